package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxRedisLength Redis 键最大长度
	MaxRedisLength = 100

	// MaxPromptLength 提示词/用户输入最大长度
	MaxPromptLength = 150

	// MaxResponseLength 模型输出最大长度
	MaxResponseLength = 300
)

// 键名包含这些关键字时，值按个人敏感信息掩码
var piiKeywords = []string{
	"email", "phone", "name", "address", "id_card", "secret", "token", "key",
	"姓名", "电话", "手机", "邮箱", "地址", "身份证",
}

// SafeAttributeValue 生成可写入日志/span 的属性值：
// 敏感键名的值做掩码，其余截断到 maxLength
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range piiKeywords {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 对个人敏感信息进行掩码处理
// "张三" -> "张*"，"王小明" -> "王*明"，"13812345678" -> "13*******78"
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	n := len(runes)
	switch {
	case n <= 1:
		return "*"
	case n == 2:
		return string(runes[:1]) + "*"
	case n <= 4:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	}
	return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
}

// TruncateString 截断字符串，保留首尾，中间用 ... 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// Snippet 返回字节偏移 offset 附近 radius 字节范围内的文本，
// 边界对齐到完整的 UTF-8 字符
func Snippet(s string, offset int64, radius int) string {
	if s == "" || radius <= 0 {
		return ""
	}
	pos := int(offset)
	if pos < 0 {
		pos = 0
	}
	if pos > len(s) {
		pos = len(s)
	}

	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(s) {
		end = len(s)
	}
	for start > 0 && !isRuneStart(s[start]) {
		start--
	}
	for end < len(s) && !isRuneStart(s[end]) {
		end++
	}
	return s[start:end]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// SafeRedisKey 安全处理 Redis 键
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}

// SafePrompt 安全处理用户输入的简历文本
func SafePrompt(content string) string {
	return TruncateString(content, MaxPromptLength)
}

// SafeResponse 安全处理模型输出
func SafeResponse(content string) string {
	return TruncateString(content, MaxResponseLength)
}
