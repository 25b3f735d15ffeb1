package constants

import "time"

const (
	// ServiceName 用于 tracer 与日志的服务名
	ServiceName = "resume-ai-go"

	// AnswerCacheDuration 回答缓存的默认有效期
	AnswerCacheDuration = 24 * time.Hour

	// APIKeyHeader 调用方携带访问密钥的请求头
	APIKeyHeader = "X-API-Key"
)
