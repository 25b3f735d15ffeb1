package parser

import (
	"regexp"
	"strings"

	"google.golang.org/genai"

	"resume-ai-go/internal/apperr"
)

// fragment 候选输出中的一个文本片段
type fragment struct {
	text    string
	thought bool
}

// fragmentRule 按优先级排列的选择规则，返回选中片段的下标，-1 表示不适用
type fragmentRule func(frags []fragment) int

// answerRules 依次为：第一个非思考片段、最后一个片段、第一个片段
var answerRules = []fragmentRule{
	func(frags []fragment) int {
		for i, f := range frags {
			if !f.thought && strings.TrimSpace(f.text) != "" {
				return i
			}
		}
		return -1
	},
	func(frags []fragment) int {
		for i := len(frags) - 1; i >= 0; i-- {
			if strings.TrimSpace(frags[i].text) != "" {
				return i
			}
		}
		return -1
	},
	func(frags []fragment) int {
		if len(frags) > 0 {
			return 0
		}
		return -1
	},
}

// SelectAnswerFragment 从模型响应中挑出回答片段，并去掉可能混入的思考过程。
// 响应中没有任何片段时返回 UpstreamEmptyResponse。
func SelectAnswerFragment(resp *genai.GenerateContentResponse) (string, error) {
	const op = "parser.demux"

	frags := collectFragments(resp)
	if len(frags) == 0 {
		return "", apperr.NewEmptyResponse(op, "response has no content fragments")
	}

	for _, rule := range answerRules {
		if i := rule(frags); i >= 0 {
			text := StripReasoningPreamble(frags[i].text)
			if strings.TrimSpace(text) == "" {
				return "", apperr.NewEmptyResponse(op, "selected fragment is empty")
			}
			return text, nil
		}
	}
	return "", apperr.NewEmptyResponse(op, "no usable fragment")
}

// collectFragments 取第一个有内容的候选的所有文本片段
func collectFragments(resp *genai.GenerateContentResponse) []fragment {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}
		frags := make([]fragment, 0, len(cand.Content.Parts))
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData != nil {
				continue
			}
			frags = append(frags, fragment{text: part.Text, thought: part.Thought})
		}
		if len(frags) > 0 {
			return frags
		}
	}
	return nil
}

// 思考过程标题，例如 "Thought Process:"、"**Reasoning**"、"## 思考过程"
var reasoningMarker = regexp.MustCompile(`(?im)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*)?[ \t]*(?:thought process|thinking process|reasoning|思考过程|推理过程)[ \t]*(?:\*\*)?[ \t]*[:：]?`)

// StripReasoningPreamble 文本中出现位于 JSON 之外的思考过程标题时，丢弃标题之后文档对象之前的全部内容。
// 优先取标题之后最后一个含文档关键字的顶层对象，其次是最后一个顶层对象，再次是最后一个顶层 {。
func StripReasoningPreamble(text string) string {
	markerEnd := -1
	for _, loc := range reasoningMarker.FindAllStringIndex(text, -1) {
		if braceDepthAt(text, loc[0]) == 0 {
			markerEnd = loc[1]
		}
	}
	if markerEnd < 0 {
		return text
	}

	docStart, objStart, braceStart := -1, -1, -1
	for i := markerEnd; i < len(text); i++ {
		switch text[i] {
		case '"':
			i = skipString(text, i)
		case '{':
			braceStart = i
			end := matchBrace(text, i)
			span := text[i:]
			if end >= 0 {
				span = text[i : end+1]
			}
			if looksLikeObject(span) {
				objStart = i
				if hasAnchorMarker(span) {
					docStart = i
				}
			}
			if end < 0 {
				i = len(text)
			} else {
				i = end
			}
		}
	}
	for _, start := range []int{docStart, objStart, braceStart} {
		if start >= 0 {
			return text[start:]
		}
	}
	return text
}

// braceDepthAt 返回位置 pos 处的花括号嵌套深度，字符串内的括号不计
func braceDepthAt(text string, pos int) int {
	depth := 0
	for i := 0; i < pos && i < len(text); i++ {
		switch text[i] {
		case '"':
			i = skipString(text, i)
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// looksLikeObject { 之后第一个非空白字符是键的引号或 }
func looksLikeObject(span string) bool {
	i := skipSpace(span, 1)
	return i < len(span) && (span[i] == '"' || span[i] == '}')
}

func hasAnchorMarker(span string) bool {
	for _, marker := range anchorMarkers {
		if strings.Contains(span, marker) {
			return true
		}
	}
	return false
}
