package parser

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```[a-z0-9_+-]*[ \t]*(\r?\n)?")
	fenceClose = regexp.MustCompile("(\r?\n)?[ \t]*```[ \t]*$")
	// 文本开头的 Markdown 标题或加粗标签，例如 "**JSON:**"、"### Result"
	leadingLabel = regexp.MustCompile(`^(?:#{1,6}[^\n{]*|\*\*[^*\n{]*\*\*[ \t]*[:：]?)[ \t]*\r?\n`)
)

// stripFences 去掉包裹在 JSON 外面的 Markdown 代码块、标题/加粗标签和行内代码反引号
func stripFences(text string) string {
	s := strings.TrimSpace(strings.TrimPrefix(strings.ToValidUTF8(text, ""), "\uFEFF"))

	for {
		next := leadingLabel.ReplaceAllString(s, "")
		next = strings.TrimSpace(next)
		if next == s {
			break
		}
		s = next
	}

	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		s = strings.TrimSpace(strings.Trim(s, "`"))
	}
	return s
}

// 已知键，用于确定未闭合字符串的边界
var knownKeyMarker = regexp.MustCompile(`"(?:name|objective|items|pages|personal|templateId|sections|id|label|value)"\s*:`)

// exciseField 从文本中删除指定字段（键、值及相邻的逗号）。
// 值是未闭合的字符串时（常见于超长 base64 图片被截断），
// 删除到下一个已知键或文本结尾。
func exciseField(text, field string) string {
	keyRe := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*`)
	for {
		loc := keyRe.FindStringIndex(text)
		if loc == nil {
			return text
		}
		start, valStart := loc[0], loc[1]

		if end, ok := valueEnd(text, valStart); ok {
			text = removeMember(text, start, end)
			continue
		}

		if m := knownKeyMarker.FindStringIndex(text[valStart:]); m != nil {
			text = text[:start] + text[valStart+m[0]:]
			continue
		}
		text = strings.TrimRight(text[:start], " \t\r\n")
		text = strings.TrimSuffix(text, ",")
	}
}

// valueEnd 返回从 i 开始的 JSON 值的结束位置；字符串未正常闭合时返回 false
func valueEnd(text string, i int) (int, bool) {
	if i >= len(text) {
		return i, false
	}

	if text[i] == '"' {
		j := skipString(text, i)
		if j >= len(text) {
			return i, false
		}
		k := skipSpace(text, j+1)
		if k >= len(text) || strings.IndexByte(",}]", text[k]) >= 0 {
			return j + 1, true
		}
		// 引号后面不是分隔符，说明这个引号其实属于下一个键
		return i, false
	}

	depth := 0
	for j := i; j < len(text); j++ {
		switch c := text[j]; {
		case c == '"':
			j = skipString(text, j)
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			if depth == 0 {
				return j, true
			}
			depth--
		case c == ',' && depth == 0:
			return j, true
		}
	}
	return len(text), true
}

// removeMember 删除 [start,end) 的成员，同时去掉后面的逗号，没有则去掉前面的逗号
func removeMember(text string, start, end int) string {
	k := skipSpace(text, end)
	if k < len(text) && text[k] == ',' {
		return text[:start] + text[skipSpace(text, k+1):]
	}
	p := start
	for p > 0 && isSpace(text[p-1]) {
		p--
	}
	if p > 0 && text[p-1] == ',' {
		return text[:p-1] + text[end:]
	}
	return text[:start] + text[end:]
}

// skipString 返回从 text[i]=='"' 开始的字符串的闭合引号位置，未闭合返回 len(text)
func skipString(text string, i int) int {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return len(text)
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
