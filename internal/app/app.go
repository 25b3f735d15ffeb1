package app

import (
	"github.com/rs/zerolog"

	"resume-ai-go/internal/config"
	"resume-ai-go/internal/gemini"
	"resume-ai-go/internal/parser"
	"resume-ai-go/internal/processor"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/ratelimit"
	"resume-ai-go/internal/storage"
)

// App 按配置组装好的各个组件
type App struct {
	Client   *gemini.Client
	Autofill *processor.AutofillProcessor
	Polisher *processor.Polisher
	Cache    *storage.Redis
}

// New 组装组件。Redis 不可用时记录警告并在没有缓存的情况下继续
func New(cfg *config.Config, logger zerolog.Logger) *App {
	client := gemini.NewClient(gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		BaseURL:    cfg.Gemini.BaseURL,
		APIVersion: cfg.Gemini.APIVersion,
		Model:      cfg.Gemini.Model,
		Timeout:    config.GetDuration(cfg.Gemini.Timeout, gemini.DefaultTimeout),
	}, gemini.WithLogger(logger.With().Str("component", "gemini").Logger()))

	a := &App{Client: client}

	opts := []processor.Option{
		processor.WithGenerator(client),
		processor.WithModelName(client.Model()),
		processor.WithPromptSettings(cfg.Generation),
		processor.WithSalvageOnOptimize(cfg.Extraction.SalvageOnOptimize),
		processor.WithLogger(logger.With().Str("component", "autofill").Logger()),
		processor.WithExtractorOptions(
			parser.WithSnippetRadius(cfg.Extraction.SnippetRadius),
			parser.WithPlaceholderFields(cfg.Extraction.PlaceholderFields...),
		),
	}

	var bucket *ratelimit.TokenBucket
	if cfg.RateLimit.QPM > 0 {
		bucket = ratelimit.NewTokenBucket(cfg.RateLimit.QPM, cfg.RateLimit.Capacity)
		opts = append(opts, processor.WithLimiter(bucket))
	}

	if cfg.Redis.Address != "" {
		cache, err := storage.NewRedisAdapter(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis 不可用，关闭回答缓存")
		} else {
			a.Cache = cache
			opts = append(opts, processor.WithResponseCache(cache, cache.CacheTTL()))
		}
	}

	a.Autofill = processor.NewAutofillProcessor(opts...)

	polishLogger := processor.WithPolishLogger(logger.With().Str("component", "polish").Logger())
	if client.HasCredential() {
		budget := cfg.Generation.ThinkingBudget
		chat := gemini.NewChatModel(client, prompt.GenerationParams{ThinkingBudget: &budget})
		a.Polisher = processor.NewPolisher(ratelimit.WithBucket(chat, bucket), polishLogger,
			processor.WithPolishBuilder(prompt.NewBuilder(prompt.WithSettings(cfg.Generation))))
	} else {
		a.Polisher = processor.NewPolisher(nil, polishLogger)
	}
	return a
}

// Close 释放外部连接
func (a *App) Close() error {
	if a.Cache != nil {
		return a.Cache.Close()
	}
	return nil
}
