package processor

import (
	"time"

	"github.com/rs/zerolog"

	"resume-ai-go/internal/parser"
	"resume-ai-go/internal/prompt"
)

// Option AutofillProcessor 选项
type Option func(*AutofillProcessor)

// WithGenerator 设置生成客户端
func WithGenerator(g Generator) Option {
	return func(p *AutofillProcessor) {
		p.generator = g
	}
}

// WithModelName 设置模型名称，参与缓存键的计算
func WithModelName(name string) Option {
	return func(p *AutofillProcessor) {
		p.modelName = name
	}
}

// WithExtractorOptions 追加提取器选项，extract 与 optimize 两种模式共用
func WithExtractorOptions(opts ...parser.ExtractorOption) Option {
	return func(p *AutofillProcessor) {
		p.extractorOpts = append(p.extractorOpts, opts...)
	}
}

// WithSalvageOnOptimize optimize 模式下是否允许只恢复部分字段，默认允许
func WithSalvageOnOptimize(enabled bool) Option {
	return func(p *AutofillProcessor) {
		p.salvageOnOptimize = enabled
	}
}

// WithResponseCache 设置回答缓存，ttl <= 0 时使用默认值
func WithResponseCache(cache ResponseCache, ttl time.Duration) Option {
	return func(p *AutofillProcessor) {
		p.cache = cache
		if ttl > 0 {
			p.cacheTTL = ttl
		}
	}
}

// WithLimiter 设置调用模型前的限流器
func WithLimiter(l Limiter) Option {
	return func(p *AutofillProcessor) {
		p.limiter = l
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(p *AutofillProcessor) {
		p.logger = logger
	}
}

// WithPromptSettings 设置各模式的采样参数
func WithPromptSettings(s prompt.Settings) Option {
	return func(p *AutofillProcessor) {
		p.builder = prompt.NewBuilder(prompt.WithSettings(s))
	}
}
