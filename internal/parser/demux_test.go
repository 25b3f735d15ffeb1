package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"resume-ai-go/internal/apperr"
)

func responseWithParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func TestSelectAnswerFragment(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{
			name: "跳过思考片段",
			resp: responseWithParts(
				&genai.Part{Text: "先分析一下输入", Thought: true},
				&genai.Part{Text: `{"personal":{}}`},
			),
			want: `{"personal":{}}`,
		},
		{
			name: "多个回答片段取第一个",
			resp: responseWithParts(
				&genai.Part{Text: `{"a":1}`},
				&genai.Part{Text: `{"b":2}`},
			),
			want: `{"a":1}`,
		},
		{
			name: "全是思考片段时取最后一个",
			resp: responseWithParts(
				&genai.Part{Text: "思考一", Thought: true},
				&genai.Part{Text: `{"c":3}`, Thought: true},
			),
			want: `{"c":3}`,
		},
		{
			name: "忽略图片片段",
			resp: responseWithParts(
				&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2}}},
				&genai.Part{Text: "ok"},
			),
			want: "ok",
		},
		{
			name: "跳过没有内容的候选",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{FinishReason: genai.FinishReasonSafety},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "second"}}}},
			}},
			want: "second",
		},
		{
			name: "去掉思考过程前缀",
			resp: responseWithParts(
				&genai.Part{Text: "**Thought Process:**\n需要输出 JSON。\n{\"a\":{\"b\":1}}"},
			),
			want: `{"a":{"b":1}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectAnswerFragment(tt.resp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectAnswerFragment_Empty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil 响应", nil},
		{"没有候选", &genai.GenerateContentResponse{}},
		{"候选没有片段", responseWithParts()},
		{"片段都是空文本", responseWithParts(&genai.Part{Text: ""}, &genai.Part{Text: "  "})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectAnswerFragment(tt.resp)
			require.Error(t, err)
			assert.Equal(t, apperr.KindUpstreamEmptyResponse, apperr.KindOf(err))
		})
	}
}

func TestStripReasoningPreamble(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"没有标记", `{"a":1}`, `{"a":1}`},
		{"英文标记", "Thought Process:\nI will build {x}.\n{\"a\":1}", `{"a":1}`},
		{"标题标记", "## 思考过程\n分析……\n{\"a\":{\"b\":{}}}", `{"a":{"b":{}}}`},
		{"标记后没有 JSON", "Reasoning: nothing here", "Reasoning: nothing here"},
		{"JSON 内部的同名字段不是标记", "{\"a\":\n\"reasoning: x\"}", "{\"a\":\n\"reasoning: x\"}"},
		{
			"文档之后的说明含花括号",
			"Thought Process:\nok\n{\"personal\":{\"name\":\"张三\"},\"pages\":[]}\nNote: fields use {label,value}.",
			"{\"personal\":{\"name\":\"张三\"},\"pages\":[]}\nNote: fields use {label,value}.",
		},
		{
			"字符串中的右括号不影响嵌套深度",
			"Thought Process:\nok\n{\"personal\":{\"objective\":\"熟悉 Go :}\"},\"pages\":[{\"id\":\"p1\",\"sections\":[]}]}",
			"{\"personal\":{\"objective\":\"熟悉 Go :}\"},\"pages\":[{\"id\":\"p1\",\"sections\":[]}]}",
		},
		{
			"文档之后的普通对象不抢占",
			"Reasoning:\n{\"pages\":[]}\n附注 {\"x\":1}",
			"{\"pages\":[]}\n附注 {\"x\":1}",
		},
		{"截断的文档", "Reasoning:\n{\"personal\":{\"name\":\"李", "{\"personal\":{\"name\":\"李"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripReasoningPreamble(tt.in))
		})
	}
}
