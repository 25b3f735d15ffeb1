package parser

import (
	"encoding/json"
	"sort"
	"strings"
)

// candidate 一段花括号配对完整的子串
type candidate struct {
	text  string
	score int
	valid bool
}

// 文档关键字及其权重
var markerWeights = map[string]int{
	`"personal"`: 20,
	`"pages"`:    20,
	`"sections"`: 15,
	`"name"`:     10,
}

// 长度阈值，越完整的文档得分越高
var lengthWeights = []struct {
	min    int
	weight int
}{
	{50, 5},
	{200, 10},
	{1000, 15},
	{5000, 20},
}

const parseableBonus = 100

// scoreCandidate 按内容特征给候选打分
func scoreCandidate(text string) candidate {
	c := candidate{text: text}
	if strings.Count(text, `"`) >= 2 {
		c.score += 10
	}
	for marker, weight := range markerWeights {
		if strings.Contains(text, marker) {
			c.score += weight
		}
	}
	for _, lw := range lengthWeights {
		if len(text) > lw.min {
			c.score += lw.weight
		}
	}
	if !strings.Contains(text, "...") && !strings.Contains(text, "…") {
		c.score += 10
	}
	if strings.Contains(text, "[") && strings.Contains(text, "]") {
		c.score += 5
	}
	if json.Valid([]byte(text)) {
		c.valid = true
		c.score += parseableBonus
	}
	return c
}

// scanCandidates 找出所有花括号配对完整的子串，按得分排序。
// 第一个 { 之后按 JSON 字符串规则跳过字符串内的括号。
func scanCandidates(text string) []candidate {
	first := strings.IndexByte(text, '{')
	if first < 0 {
		return nil
	}

	var (
		stack []int
		seen  = make(map[string]bool)
		out   []candidate
	)
	for i := first; i < len(text); i++ {
		switch text[i] {
		case '"':
			i = skipString(text, i)
		case '{':
			stack = append(stack, i)
		case '}':
			if len(stack) == 0 {
				continue
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sub := text[start : i+1]
			if !seen[sub] {
				seen[sub] = true
				out = append(out, scoreCandidate(sub))
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].score != out[b].score {
			return out[a].score > out[b].score
		}
		if out[a].valid != out[b].valid {
			return out[a].valid
		}
		return len(out[a].text) > len(out[b].text)
	})
	return out
}

// braceSpan 第一个 { 到最后一个 } 之间的子串
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

var anchorMarkers = []string{`"personal"`, `"pages"`}

// keywordSpan 以文档关键字为锚点：向前找到最近的 {，向后按嵌套深度找匹配的 }。
// 找不到匹配的 } 时（输出被截断）返回到文本结尾。
func keywordSpan(text string) (string, bool) {
	for _, marker := range anchorMarkers {
		m := strings.Index(text, marker)
		if m < 0 {
			continue
		}
		start := strings.LastIndexByte(text[:m], '{')
		if start < 0 {
			continue
		}
		if end := matchBrace(text, start); end > 0 {
			return text[start : end+1], true
		}
		return text[start:], true
	}
	return "", false
}

// matchBrace 返回与 text[start] 处 { 匹配的 } 位置，没有则返回 -1
func matchBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '"':
			i = skipString(text, i)
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// openTail 第一个 { 到文本结尾，用于没有任何闭合括号的截断输出
func openTail(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	return text[start:], true
}
