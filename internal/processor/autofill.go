package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/parser"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/tracing"
	"resume-ai-go/internal/types"
)

var tracer = otel.Tracer("resume-ai-go/processor")

// DefaultCacheTTL 回答缓存的默认有效期
const DefaultCacheTTL = 24 * time.Hour

// Request 一次自动填充请求
type Request struct {
	Mode       prompt.Mode
	Text       string
	Image      *types.Image
	TargetRole string
	// Existing 编辑器中当前的文档，为 nil 时视为空文档
	Existing *types.ResumeDocument
}

// Result 自动填充结果
type Result struct {
	// Document 合并后的文档，至少有一页
	Document types.ResumeDocument
	// Extracted 模型提取出的原始文档（已整理）
	Extracted *types.ResumeDocument
	Layer     parser.Layer
	Partial   bool
	Cached    bool
}

// AutofillProcessor 串联提示词构造、模型调用、片段选择、文档提取与合并
type AutofillProcessor struct {
	generator         Generator
	builder           *prompt.Builder
	modelName         string
	extractorOpts     []parser.ExtractorOption
	salvageOnOptimize bool
	cache             ResponseCache
	cacheTTL          time.Duration
	limiter           Limiter
	logger            zerolog.Logger

	extractExtractor  *parser.Extractor
	optimizeExtractor *parser.Extractor
}

// NewAutofillProcessor 创建处理器
func NewAutofillProcessor(opts ...Option) *AutofillProcessor {
	p := &AutofillProcessor{
		builder:           prompt.NewBuilder(),
		salvageOnOptimize: true,
		cacheTTL:          DefaultCacheTTL,
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	// 首次导入必须明确失败，只有 optimize 合并流程允许部分恢复
	p.extractExtractor = parser.NewExtractor(p.extractorOptions(false)...)
	p.optimizeExtractor = parser.NewExtractor(p.extractorOptions(p.salvageOnOptimize)...)
	return p
}

func (p *AutofillProcessor) extractorOptions(salvage bool) []parser.ExtractorOption {
	opts := make([]parser.ExtractorOption, 0, len(p.extractorOpts)+2)
	opts = append(opts, parser.WithLogger(p.logger))
	opts = append(opts, p.extractorOpts...)
	return append(opts, parser.WithPartialSalvage(salvage))
}

// Run 执行一次自动填充。任何阶段失败都直接返回该阶段的错误，已有文档保持不变。
func (p *AutofillProcessor) Run(ctx context.Context, req Request) (*Result, error) {
	const op = "processor.autofill"

	ctx, span := tracer.Start(ctx, "AutofillProcessor.Run",
		trace.WithAttributes(
			attribute.String("autofill.mode", string(req.Mode)),
			attribute.Int("autofill.text_length", len(req.Text)),
			attribute.Bool("autofill.has_image", !req.Image.Empty()),
			attribute.Bool("autofill.has_existing", req.Existing != nil),
		))
	defer span.End()

	if p.generator == nil {
		err := apperr.NewMissingCredential(op)
		tracing.RecordError(span, err, tracing.ErrorTypeCredential)
		return nil, err
	}

	pr, err := p.buildPrompt(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeOf(err))
		return nil, err
	}

	answer, cached, err := p.answer(ctx, pr)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeOf(err))
		return nil, err
	}

	extractor := p.extractExtractor
	if req.Mode == prompt.ModeOptimize {
		extractor = p.optimizeExtractor
	}
	_, extractSpan := tracer.Start(ctx, "Extractor.Extract",
		trace.WithAttributes(attribute.Int("answer.length", len(answer))))
	res, err := extractor.ExtractDetailed(answer)
	if err != nil {
		tracing.RecordErrorWithInfo(extractSpan, err, tracing.ErrorTypeExtraction,
			attribute.String("answer.preview", tracing.SafeResponse(answer)))
		extractSpan.End()
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		p.logger.Warn().Err(err).
			Str("mode", string(req.Mode)).
			Int("answer_length", len(answer)).
			Msg("模型输出无法解析为简历")
		return nil, err
	}
	extractSpan.SetAttributes(attribute.String("extract.layer", string(res.Layer)))
	extractSpan.End()

	if p.cache != nil && !cached && !res.Partial {
		if err := p.cache.SetAnswer(ctx, p.cacheKey(pr), answer, p.cacheTTL); err != nil {
			p.logger.Warn().Err(err).Msg("写入回答缓存失败")
		}
	}

	merged := Merge(req.Existing, res.Document)
	types.EnsurePage(&merged)

	span.SetAttributes(
		attribute.String("extract.layer", string(res.Layer)),
		attribute.Bool("extract.partial", res.Partial),
		attribute.Bool("autofill.cached", cached),
		attribute.Int("document.sections", merged.SectionCount()),
	)
	p.logger.Info().
		Str("mode", string(req.Mode)).
		Str("layer", string(res.Layer)).
		Bool("partial", res.Partial).
		Bool("cached", cached).
		Str("name", tracing.MaskPII(merged.Personal.Name)).
		Int("sections", merged.SectionCount()).
		Msg("自动填充完成")

	return &Result{
		Document:  merged,
		Extracted: res.Document,
		Layer:     res.Layer,
		Partial:   res.Partial,
		Cached:    cached,
	}, nil
}

// buildPrompt optimize 模式没有新的文本和图片时，用已有文档作为待优化内容
func (p *AutofillProcessor) buildPrompt(req Request) (*prompt.Prompt, error) {
	text := req.Text
	if req.Mode == prompt.ModeOptimize && strings.TrimSpace(text) == "" && req.Image.Empty() {
		text = prompt.DocumentContext(req.Existing)
	}
	return p.builder.Build(prompt.Request{
		Mode:        req.Mode,
		SourceText:  text,
		SourceImage: req.Image,
		TargetRole:  req.TargetRole,
	})
}

// answer 优先读缓存，未命中时调用模型并选出回答片段
func (p *AutofillProcessor) answer(ctx context.Context, pr *prompt.Prompt) (string, bool, error) {
	var key string
	if p.cache != nil {
		key = p.cacheKey(pr)
		answer, ok, err := p.cache.GetAnswer(ctx, key)
		if err != nil {
			p.logger.Warn().Err(err).Msg("读取回答缓存失败，直接调用模型")
		} else if ok {
			p.logger.Debug().Str("key", tracing.SafeRedisKey(key)).Msg("命中回答缓存")
			return answer, true, nil
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", false, apperr.NewNetworkFailure("processor.ratelimit", 0, "", err)
		}
	}

	resp, err := p.generator.Generate(ctx, pr)
	if err != nil {
		return "", false, err
	}
	answer, err := parser.SelectAnswerFragment(resp)
	if err != nil {
		return "", false, err
	}
	return answer, false, nil
}

// cacheKey 模型、系统指令、用户消息与图片内容共同决定缓存键
func (p *AutofillProcessor) cacheKey(pr *prompt.Prompt) string {
	h := md5.New()
	h.Write([]byte(p.modelName))
	h.Write([]byte{0})
	h.Write([]byte(pr.SystemInstruction))
	h.Write([]byte{0})
	h.Write([]byte(pr.UserMessage))
	if pr.Image != nil {
		h.Write([]byte{0})
		h.Write([]byte(pr.Image.MIMEType))
		h.Write(pr.Image.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
