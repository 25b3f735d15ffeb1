package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-ai-go/internal/config"
	"resume-ai-go/internal/constants"
	"resume-ai-go/internal/tracing"
)

// ErrNotFound 键不存在
var ErrNotFound = redis.Nil

var redisTracer = otel.Tracer("resume-ai-go/storage/redis")

// Redis 回答缓存，实现 processor.ResponseCache
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// FormatKey 按 constants 中的格式拼出完整的键
func (r *Redis) FormatKey(keyFormat string, parts ...interface{}) string {
	return fmt.Sprintf(keyFormat, parts...)
}

// NewRedisAdapter 建立连接并挂上 OpenTelemetry 钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// CacheTTL 配置中的缓存有效期
func (r *Redis) CacheTTL() time.Duration {
	if r.config == nil {
		return constants.AnswerCacheDuration
	}
	return config.GetDuration(r.config.CacheTTL, constants.AnswerCacheDuration)
}

// GetAnswer 读取缓存的回答片段，未命中时 ok=false 且 err=nil
func (r *Redis) GetAnswer(ctx context.Context, promptKey string) (string, bool, error) {
	if r.Client == nil {
		return "", false, fmt.Errorf("redis client is not initialized")
	}
	key := r.FormatKey(constants.KeyAutofillAnswer, promptKey)

	ctx, span := redisTracer.Start(ctx, "Redis.GetAnswer",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "GET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		))
	defer span.End()

	val, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
		span.SetStatus(codes.Ok, "key not found")
		return "", false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return "", false, err
	}
	span.SetAttributes(
		attribute.Bool("db.redis.key_exists", true),
		attribute.Int("db.redis.value_length", len(val)),
	)
	return val, true, nil
}

// SetAnswer 写入回答片段；ttl <= 0 时使用配置中的有效期
func (r *Redis) SetAnswer(ctx context.Context, promptKey, answer string, ttl time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	if ttl <= 0 {
		ttl = r.CacheTTL()
	}
	key := r.FormatKey(constants.KeyAutofillAnswer, promptKey)

	ctx, span := redisTracer.Start(ctx, "Redis.SetAnswer",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "SET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
			attribute.Int("db.redis.value_length", len(answer)),
			attribute.Int64("db.redis.expiration_ms", ttl.Milliseconds()),
		))
	defer span.End()

	if err := r.Client.Set(ctx, key, answer, ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return err
	}
	return nil
}
