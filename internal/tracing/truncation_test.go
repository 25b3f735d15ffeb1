package tracing

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"resume-ai-go/internal/apperr"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("张"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))
	assert.Equal(t, "13*******78", MaskPII("13812345678"))
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "张*", SafeAttributeValue("personal.name", "张三", 100))
	assert.Equal(t, "李*", SafeAttributeValue("姓名", "李四", 100))
	assert.Equal(t, "abc", SafeAttributeValue("mode", "abc", 100))
	assert.Equal(t, "ab...yz", SafeAttributeValue("text", "abcdefghijklmnopqrstuvwxyz", 7))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "简历...内容", TruncateString("简历里面有很多内容", 7))
}

func TestSnippet(t *testing.T) {
	s := `{"personal": {"name": "张三", "objective": }`
	got := Snippet(s, 40, 10)
	assert.Contains(t, got, "objective")

	// 不会切断多字节字符
	for offset := int64(0); offset <= int64(len(s)); offset++ {
		assert.True(t, utf8.ValidString(Snippet(s, offset, 3)), "offset %d", offset)
	}

	assert.Equal(t, "", Snippet("", 0, 10))
	assert.Equal(t, "abc", Snippet("abc", 100, 10))
	assert.Equal(t, "abc", Snippet("abc", -5, 10))
}

func TestErrorTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, ErrorTypeOf(apperr.NewInvalidInput("op", "")))
	assert.Equal(t, ErrorTypeCredential, ErrorTypeOf(apperr.NewMissingCredential("op")))
	assert.Equal(t, ErrorTypeUpstream, ErrorTypeOf(apperr.NewEmptyResponse("op", "")))
	assert.Equal(t, ErrorTypeExtraction, ErrorTypeOf(apperr.NewExtractionFailed("op", "", 0, "", nil)))
	assert.Equal(t, ErrorTypeInternal, ErrorTypeOf(errors.New("x")))
}
