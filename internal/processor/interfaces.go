package processor

import (
	"context"
	"time"

	"google.golang.org/genai"

	"resume-ai-go/internal/prompt"
)

// Generator 调用生成接口，每次调用只发出一次请求
type Generator interface {
	Generate(ctx context.Context, p *prompt.Prompt) (*genai.GenerateContentResponse, error)
}

// ResponseCache 缓存模型的回答片段，相同的提示词不再重复调用模型
type ResponseCache interface {
	// GetAnswer 未命中时返回 ok=false 且 err=nil
	GetAnswer(ctx context.Context, key string) (answer string, ok bool, err error)
	SetAnswer(ctx context.Context, key, answer string, ttl time.Duration) error
}

// Limiter 调用模型之前的限流
type Limiter interface {
	Wait(ctx context.Context) error
}
