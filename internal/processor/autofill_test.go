package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/gemini"
	"resume-ai-go/internal/parser"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/types"
)

const zhangSanAnswer = `{
  "personal": {"name": "张三", "objective": "", "items": [{"id": "pi-1", "label": "毕业院校", "value": "北大"}]},
  "pages": [{"id": "page-1", "sections": [{
    "id": "sec-1", "title": "教育背景", "type": "education", "iconName": "GraduationCap",
    "content": [{"id": "edu-1", "period": "", "school": "北大", "major": "计算机", "degree": "", "gpa": "", "courses": ""}]
  }]}]
}`

// fakeGenerator 按顺序返回预设的回答，并记录收到的提示词
type fakeGenerator struct {
	mu      sync.Mutex
	answers []string
	err     error
	prompts []*prompt.Prompt
}

func (g *fakeGenerator) Generate(_ context.Context, p *prompt.Prompt) (*genai.GenerateContentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	if g.err != nil {
		return nil, g.err
	}
	answer := g.answers[0]
	if len(g.answers) > 1 {
		g.answers = g.answers[1:]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{Text: "整理输入中的字段", Thought: true},
			{Text: answer},
		}}}},
	}, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) GetAnswer(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) SetAnswer(_ context.Context, key, answer string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = answer
	return nil
}

type denyLimiter struct{}

func (denyLimiter) Wait(ctx context.Context) error { return context.DeadlineExceeded }

func TestAutofill_ExtractEndToEnd(t *testing.T) {
	gen := &fakeGenerator{answers: []string{"```json\n" + zhangSanAnswer + "\n```"}}
	p := NewAutofillProcessor(WithGenerator(gen))
	existing := types.DefaultDocument()

	res, err := p.Run(context.Background(), Request{
		Mode:     prompt.ModeExtract,
		Text:     "姓名：张三\n学校：北大\n专业：计算机",
		Existing: &existing,
	})
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0].UserMessage, "张三")

	doc := res.Document
	assert.Equal(t, "张三", doc.Personal.Name)
	assert.Equal(t, existing.Personal.Objective, doc.Personal.Objective)
	assert.Equal(t, existing.Personal.Photo, doc.Personal.Photo)
	require.Len(t, doc.Pages, 1)
	require.Len(t, doc.Pages[0].Sections, 1)
	sec := doc.Pages[0].Sections[0]
	assert.Equal(t, types.SectionEducation, sec.Type)
	require.Len(t, sec.Education, 1)
	assert.Equal(t, types.FlexString("北大"), sec.Education[0].School)
	assert.Equal(t, types.FlexString("计算机"), sec.Education[0].Major)
	assert.Equal(t, parser.LayerDirect, res.Layer)
	assert.False(t, res.Partial)
	assert.False(t, res.Cached)

	assert.Equal(t, "简历", existing.Personal.Name)
}

func TestAutofill_NilExistingGetsAPage(t *testing.T) {
	gen := &fakeGenerator{answers: []string{`{"personal":{"name":"赵六"}}`}}
	p := NewAutofillProcessor(WithGenerator(gen))

	res, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "赵六"})
	require.NoError(t, err)
	assert.Equal(t, "赵六", res.Document.Personal.Name)
	assert.Len(t, res.Document.Pages, 1)
}

func TestAutofill_MissingCredential(t *testing.T) {
	t.Run("没有生成客户端", func(t *testing.T) {
		_, err := NewAutofillProcessor().Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "x"})
		assert.Equal(t, apperr.KindMissingCredential, apperr.KindOf(err))
	})
	t.Run("客户端没有密钥", func(t *testing.T) {
		client := gemini.NewClient(gemini.Config{Model: "gemini-test"})
		p := NewAutofillProcessor(WithGenerator(client))
		_, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "x"})
		assert.Equal(t, apperr.KindMissingCredential, apperr.KindOf(err))
	})
}

func TestAutofill_InvalidInputSkipsModel(t *testing.T) {
	gen := &fakeGenerator{answers: []string{"{}"}}
	p := NewAutofillProcessor(WithGenerator(gen))

	_, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "   "})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls())
}

func TestAutofill_PropagatesGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: apperr.NewNetworkFailure("gemini.generate", 503, "overloaded", errors.New("503"))}
	p := NewAutofillProcessor(WithGenerator(gen))

	_, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "张三"})
	assert.Equal(t, apperr.KindNetworkFailure, apperr.KindOf(err))
	assert.Equal(t, 1, gen.calls())
}

func TestAutofill_ExtractFailsWithoutSalvage(t *testing.T) {
	answer := `{"name": "王五", "objective": "产品经理"}`
	gen := &fakeGenerator{answers: []string{answer}}
	p := NewAutofillProcessor(WithGenerator(gen))

	_, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "王五"})
	assert.Equal(t, apperr.KindExtractionFailed, apperr.KindOf(err))
}

func TestAutofill_OptimizeSalvagesPartial(t *testing.T) {
	answer := `{"name": "王五", "objective": "产品经理"}`
	gen := &fakeGenerator{answers: []string{answer}}
	cache := newMemoryCache()
	p := NewAutofillProcessor(WithGenerator(gen), WithResponseCache(cache, time.Minute))
	existing := types.DefaultDocument()

	res, err := p.Run(context.Background(), Request{Mode: prompt.ModeOptimize, Existing: &existing})
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Equal(t, parser.LayerSalvage, res.Layer)
	assert.Equal(t, "王五", res.Document.Personal.Name)
	assert.Equal(t, "产品经理", res.Document.Personal.Objective)
	assert.Equal(t, existing.Pages, res.Document.Pages)
	assert.Empty(t, cache.entries)

	// 没有新输入时，已有文档作为待优化内容
	assert.Contains(t, gen.prompts[0].UserMessage, "简历佳大学")

	p = NewAutofillProcessor(WithGenerator(gen), WithSalvageOnOptimize(false))
	_, err = p.Run(context.Background(), Request{Mode: prompt.ModeOptimize, Existing: &existing})
	assert.Equal(t, apperr.KindExtractionFailed, apperr.KindOf(err))
}

func TestAutofill_ResponseCache(t *testing.T) {
	gen := &fakeGenerator{answers: []string{zhangSanAnswer}}
	cache := newMemoryCache()
	p := NewAutofillProcessor(WithGenerator(gen), WithModelName("gemini-test"), WithResponseCache(cache, 0))
	req := Request{Mode: prompt.ModeExtract, Text: "姓名：张三"}

	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Len(t, cache.entries, 1)

	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, gen.calls())
	assert.Equal(t, first.Document.Personal, second.Document.Personal)

	// 模型不同则缓存键不同
	other := NewAutofillProcessor(WithGenerator(gen), WithModelName("gemini-other"), WithResponseCache(cache, 0))
	_, err = other.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
}

func TestAutofill_CacheReadErrorFallsBackToModel(t *testing.T) {
	gen := &fakeGenerator{answers: []string{zhangSanAnswer}}
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	p := NewAutofillProcessor(WithGenerator(gen), WithResponseCache(cache, 0))

	res, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "张三"})
	require.NoError(t, err)
	assert.Equal(t, "张三", res.Document.Personal.Name)
	assert.Equal(t, 1, gen.calls())
}

func TestAutofill_LimiterFailure(t *testing.T) {
	gen := &fakeGenerator{answers: []string{zhangSanAnswer}}
	p := NewAutofillProcessor(WithGenerator(gen), WithLimiter(denyLimiter{}))

	_, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "张三"})
	assert.Equal(t, apperr.KindNetworkFailure, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls())
}

func TestAutofill_PromptSettings(t *testing.T) {
	gen := &fakeGenerator{answers: []string{zhangSanAnswer}}
	settings := prompt.DefaultSettings()
	settings.ExtractTemperature = 0.05
	p := NewAutofillProcessor(WithGenerator(gen), WithPromptSettings(settings))

	_, err := p.Run(context.Background(), Request{Mode: prompt.ModeExtract, Text: "张三"})
	require.NoError(t, err)
	assert.InDelta(t, 0.05, gen.prompts[0].Params.Temperature, 0.0001)
}
