package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/types"
)

func TestBuild_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "文本和图片都为空", req: Request{Mode: ModeExtract, SourceText: "   "}},
		{name: "空图片不算输入", req: Request{Mode: ModeExtract, SourceImage: &types.Image{MIMEType: "image/png"}}},
		{name: "优化模式缺少目标岗位", req: Request{Mode: ModeOptimize, SourceText: "张三 简历"}},
		{name: "未知模式", req: Request{Mode: "translate", SourceText: "张三"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(tt.req)
			assert.Nil(t, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
		})
	}
}

func TestBuild_Extract(t *testing.T) {
	p, err := Build(Request{Mode: ModeExtract, SourceText: "姓名：张三\n学校：北大\n专业：计算机"})
	require.NoError(t, err)

	assert.Contains(t, p.SystemInstruction, "第一个字符必须是 {")
	assert.Contains(t, p.SystemInstruction, "不要使用 Markdown 代码块")
	assert.Contains(t, p.SystemInstruction, `"personal"`)
	assert.Contains(t, p.UserMessage, "姓名：张三")
	assert.Nil(t, p.Image)

	assert.Equal(t, MIMETypeJSON, p.Params.ResponseMIMEType)
	assert.InDelta(t, 0.1, p.Params.Temperature, 1e-6)
	assert.GreaterOrEqual(t, p.Params.MaxOutputTokens, int32(8192))
	require.NotNil(t, p.Params.ThinkingBudget)
	assert.Equal(t, int32(0), *p.Params.ThinkingBudget)
}

func TestBuild_ImageOnly(t *testing.T) {
	img := &types.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	p, err := Build(Request{Mode: ModeExtract, SourceImage: img})
	require.NoError(t, err)
	assert.Same(t, img, p.Image)
	assert.Contains(t, p.UserMessage, "图片")
}

func TestBuild_Optimize(t *testing.T) {
	p, err := Build(Request{Mode: ModeOptimize, SourceText: "张三，北大计算机", TargetRole: "后端开发工程师"})
	require.NoError(t, err)
	assert.Contains(t, p.UserMessage, "后端开发工程师")
	assert.Contains(t, p.UserMessage, "张三，北大计算机")
	assert.Contains(t, p.SystemInstruction, "不得虚构")
	assert.Equal(t, MIMETypeJSON, p.Params.ResponseMIMEType)
	assert.InDelta(t, 0.95, p.Params.TopP, 1e-6)
}

func TestBuilder_WithSettings(t *testing.T) {
	s := DefaultSettings()
	s.ExtractTemperature = 0.3
	s.MaxOutputTokens = 16384
	p, err := NewBuilder(WithSettings(s)).Build(Request{Mode: ModeExtract, SourceText: "李四"})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, p.Params.Temperature, 1e-6)
	assert.Equal(t, int32(16384), p.Params.MaxOutputTokens)
}

func TestBuildPolish(t *testing.T) {
	b := NewBuilder()

	p, err := b.BuildPolish("负责审计工作", PolishBullet)
	require.NoError(t, err)
	assert.Equal(t, "负责审计工作", p.UserMessage)
	assert.Contains(t, p.SystemInstruction, "结果导向")
	assert.Empty(t, p.Params.ResponseMIMEType)

	p, err = b.BuildPolish("热爱学习", "unknown")
	require.NoError(t, err)
	assert.Equal(t, polishInstructions[PolishBullet], p.SystemInstruction)

	_, err = b.BuildPolish("  ", PolishSummary)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestDocumentContext_StripsPhoto(t *testing.T) {
	doc := types.DefaultDocument()
	ctx := DocumentContext(&doc)
	assert.NotContains(t, ctx, "unsplash")
	assert.True(t, strings.Contains(ctx, "简历佳大学"))
	assert.Equal(t, types.DefaultPhotoURL, doc.Personal.Photo)
	assert.Empty(t, DocumentContext(nil))
}
