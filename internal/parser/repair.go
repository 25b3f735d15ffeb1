package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// repairSyntax 修复常见的 JSON 语法问题：
// 单引号字符串、注释、字符串内的控制字符、多余的逗号、缺失的逗号
func repairSyntax(s string) string {
	s = convertSingleQuotes(s)
	s = stripComments(s)
	s = escapeControlChars(s)
	s = removeTrailingCommas(s)
	s = insertMissingCommas(s)
	return s
}

// aggressiveRepair 在 repairSyntax 的基础上：转义字符串内部多余的引号，
// 在相邻的字面量与键之间补逗号，并补全被截断的字符串和括号
func aggressiveRepair(s string) string {
	s = sanitizeInnerQuotes(s)
	s = repairSyntax(s)
	s = insertLiteralCommas(s)
	s = closeTruncated(s)
	return s
}

// convertSingleQuotes 把位于键/值位置的单引号字符串改写为双引号字符串
func convertSingleQuotes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := byte(0) // 字符串外最近的非空白字符
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			j := skipString(s, i)
			if j >= len(s) {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(s[i : j+1])
			i = j
			prev = '"'
		case c == '\'' && (prev == '{' || prev == '[' || prev == ',' || prev == ':'):
			b.WriteByte('"')
			j := i + 1
			for ; j < len(s); j++ {
				switch s[j] {
				case '\\':
					if j+1 < len(s) && s[j+1] == '\'' {
						b.WriteByte('\'')
					} else if j+1 < len(s) {
						b.WriteByte('\\')
						b.WriteByte(s[j+1])
					}
					j++
					continue
				case '"':
					b.WriteString(`\"`)
					continue
				case '\'':
				default:
					b.WriteByte(s[j])
					continue
				}
				break
			}
			if j < len(s) {
				b.WriteByte('"')
			}
			i = j
			prev = '"'
		default:
			b.WriteByte(c)
			if !isSpace(c) {
				prev = c
			}
		}
	}
	return b.String()
}

// stripComments 删除字符串外的 // 行注释和 /* */ 块注释
func stripComments(s string) string {
	if !strings.Contains(s, "//") && !strings.Contains(s, "/*") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			j := skipString(s, i)
			if j >= len(s) {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(s[i : j+1])
			i = j
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// escapeControlChars 转义字符串内部的原始控制字符（换行、制表符等）
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inStr, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inStr {
			if c == '"' {
				inStr = true
			}
			b.WriteByte(c)
			continue
		}
		switch {
		case escaped:
			escaped = false
			b.WriteByte(c)
		case c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"':
			inStr = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// removeTrailingCommas 删除 } 或 ] 之前多余的逗号
func removeTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			j := skipString(s, i)
			if j >= len(s) {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(s[i : j+1])
			i = j
		case ',':
			k := skipSpace(s, i+1)
			if k < len(s) && (s[k] == '}' || s[k] == ']') {
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// insertMissingCommas 在 }{、]{、}[、][、}"、]"、"" 这类相邻的值之间补逗号
func insertMissingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			j := skipString(s, i)
			if j >= len(s) {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(s[i : j+1])
			i = j
			if k := skipSpace(s, j+1); k < len(s) && s[k] == '"' {
				b.WriteByte(',')
			}
		case '}', ']':
			b.WriteByte(c)
			if k := skipSpace(s, i+1); k < len(s) && strings.IndexByte(`{["`, s[k]) >= 0 {
				b.WriteByte(',')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// sanitizeInnerQuotes 转义字符串内部未转义的双引号：
// 只有后面紧跟 : , ] } 或换行后紧跟下一个键时，引号才被视为字符串结束
func sanitizeInnerQuotes(src string) string {
	var b strings.Builder
	b.Grow(len(src) + 16)
	inStr, escaped := false, false

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"' && !escaped:
			if !inStr {
				inStr = true
				b.WriteByte(c)
				break
			}
			j := skipSpace(src, i+1)
			newline := strings.ContainsAny(src[i+1:j], "\n\r")
			if j >= len(src) || strings.IndexByte(":,]}", src[j]) >= 0 || (newline && src[j] == '"') {
				inStr = false
				b.WriteByte(c)
			} else {
				b.WriteString(`\"`)
			}
			escaped = false
		case c == '\\' && !escaped:
			escaped = true
			b.WriteByte(c)
		default:
			b.WriteByte(c)
			escaped = false
		}
	}
	return b.String()
}

func isLiteralByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '.' || c == '-' || c == '+'
}

// insertLiteralCommas 在数字/true/false/null 与紧随其后的键或值之间补逗号
func insertLiteralCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			j := skipString(s, i)
			if j >= len(s) {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(s[i : j+1])
			i = j
		case isLiteralByte(c):
			j := i
			for j < len(s) && isLiteralByte(s[j]) {
				j++
			}
			b.WriteString(s[i:j])
			if k := skipSpace(s, j); k < len(s) && strings.IndexByte(`"{[`, s[k]) >= 0 {
				b.WriteByte(',')
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var trailingBareWord = regexp.MustCompile(`[A-Za-z]+$`)

type frame struct {
	open       byte
	keyPending bool // 对象中已读到键、尚未读到冒号
	expectKey  bool
}

// closeTruncated 补全被截断的输出：闭合未结束的字符串，
// 处理悬空的键/冒号/逗号，再按嵌套顺序补齐括号；根对象闭合后的内容被丢弃
func closeTruncated(s string) string {
	var stack []frame
	inStr, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
				if n := len(stack); n > 0 && stack[n-1].open == '{' && stack[n-1].expectKey {
					stack[n-1].keyPending = true
				}
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			stack = append(stack, frame{open: '{', expectKey: true})
		case '[':
			stack = append(stack, frame{open: '['})
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return s[:i+1]
				}
			}
		case ':':
			if n := len(stack); n > 0 && stack[n-1].open == '{' {
				stack[n-1].keyPending = false
				stack[n-1].expectKey = false
			}
		case ',':
			if n := len(stack); n > 0 && stack[n-1].open == '{' {
				stack[n-1].expectKey = true
				stack[n-1].keyPending = false
			}
		}
	}

	if !inStr && len(stack) == 0 {
		return s
	}

	var b strings.Builder
	b.WriteString(s)
	if inStr {
		out := b.String()
		if escaped {
			out = out[:len(out)-1]
		}
		b.Reset()
		b.WriteString(out)
		b.WriteByte('"')
		if n := len(stack); n > 0 && stack[n-1].open == '{' && stack[n-1].expectKey {
			stack[n-1].keyPending = true
		}
	}

	out := strings.TrimRight(b.String(), " \t\r\n")
	if !inStr {
		if w := trailingBareWord.FindString(out); w != "" && w != "true" && w != "false" && w != "null" {
			out = strings.TrimRight(out[:len(out)-len(w)], " \t\r\n")
		}
	}
	out = strings.TrimRight(strings.TrimSuffix(out, ","), " \t\r\n")

	switch n := len(stack); {
	case strings.HasSuffix(out, ":"):
		out += "null"
	case n > 0 && stack[n-1].open == '{' && stack[n-1].keyPending:
		out += ":null"
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].open == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}
	return out
}
