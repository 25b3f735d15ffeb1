package processor

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/tracing"
)

// Polisher 对单段文本做润色，任何失败都原样返回输入
type Polisher struct {
	model   model.ToolCallingChatModel
	builder *prompt.Builder
	logger  zerolog.Logger
}

// PolisherOption 润色器配置
type PolisherOption func(*Polisher)

// WithPolishBuilder 指定提示词构造器
func WithPolishBuilder(b *prompt.Builder) PolisherOption {
	return func(p *Polisher) {
		if b != nil {
			p.builder = b
		}
	}
}

// WithPolishLogger 指定日志
func WithPolishLogger(l zerolog.Logger) PolisherOption {
	return func(p *Polisher) {
		p.logger = l
	}
}

// NewPolisher 创建润色器；chatModel 为 nil 表示没有配置凭证
func NewPolisher(chatModel model.ToolCallingChatModel, opts ...PolisherOption) *Polisher {
	p := &Polisher{
		model:   chatModel,
		builder: prompt.NewBuilder(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Polish 返回润色后的文本，去掉首尾空白
func (p *Polisher) Polish(ctx context.Context, text string, kind prompt.PolishKind) string {
	ctx, span := tracer.Start(ctx, "Polisher.Polish",
		trace.WithAttributes(
			attribute.String("polish.kind", string(kind)),
			attribute.Int("polish.text_length", len(text)),
		))
	defer span.End()

	if p.model == nil {
		span.SetAttributes(attribute.Bool("polish.echo", true))
		return text
	}
	pr, err := p.builder.BuildPolish(text, kind)
	if err != nil {
		span.SetAttributes(attribute.Bool("polish.echo", true))
		return text
	}

	opts := []model.Option{model.WithTemperature(pr.Params.Temperature)}
	if pr.Params.MaxOutputTokens > 0 {
		opts = append(opts, model.WithMaxTokens(int(pr.Params.MaxOutputTokens)))
	}
	msg, err := p.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(pr.SystemInstruction),
		schema.UserMessage(pr.UserMessage),
	}, opts...)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeOf(err))
		p.logger.Warn().Err(err).Str("kind", string(kind)).Msg("润色失败，返回原文")
		return text
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		p.logger.Warn().Str("kind", string(kind)).Msg("润色结果为空，返回原文")
		span.SetAttributes(attribute.Bool("polish.echo", true))
		return text
	}
	return strings.TrimSpace(msg.Content)
}
