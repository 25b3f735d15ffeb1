package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/tracing"
)

const (
	DefaultBaseURL    = "https://yunwu.ai/"
	DefaultAPIVersion = "v1beta"
	DefaultModel      = "gemini-3-flash-preview"
	DefaultTimeout    = 120 * time.Second
)

var tracer = otel.Tracer("resume-ai-go/gemini")

// Config 生成服务的连接参数，构造时显式传入
type Config struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	Timeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client 调用 Gemini 兼容的 generateContent 接口，
// 每次 Generate 只发出一次 HTTP 请求，不做重试。
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger

	once   sync.Once
	sdk    *genai.Client
	genErr error
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient 创建客户端。缺少 API Key 不会报错，调用 Generate 时才返回 MissingCredential
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg.withDefaults(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.cfg.Timeout}
	}
	return c
}

// Model 返回使用的模型名称
func (c *Client) Model() string {
	return c.cfg.Model
}

// HasCredential 是否配置了 API Key
func (c *Client) HasCredential() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		key := strings.TrimSpace(c.cfg.APIKey)
		c.sdk, c.genErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     key,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: c.httpClient,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    c.cfg.BaseURL,
				APIVersion: c.cfg.APIVersion,
				Headers:    http.Header{"Authorization": []string{"Bearer " + key}},
			},
		})
	})
	return c.sdk, c.genErr
}

// Generate 发送一次生成请求并返回原始响应。
// 未配置凭证时在任何网络调用之前返回 MissingCredential；
// 非 2xx 响应返回带状态码和响应体的 NetworkFailure；
// 没有任何候选输出时返回 UpstreamEmptyResponse。
func (c *Client) Generate(ctx context.Context, p *prompt.Prompt) (*genai.GenerateContentResponse, error) {
	const op = "gemini.generate"

	if p == nil {
		return nil, apperr.NewInvalidInput(op, "prompt is nil")
	}
	if !c.HasCredential() {
		return nil, apperr.NewMissingCredential(op)
	}

	ctx, span := tracer.Start(ctx, "gemini.GenerateContent",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gemini.model", c.cfg.Model),
			attribute.String("prompt.mode", string(p.Mode)),
			attribute.Int("prompt.user_length", len(p.UserMessage)),
			attribute.Bool("prompt.has_image", p.Image != nil),
		))
	defer span.End()

	client, err := c.client(ctx)
	if err != nil {
		err = apperr.NewNetworkFailure(op, 0, "", err)
		tracing.RecordError(span, err, tracing.ErrorTypeUpstream)
		return nil, err
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, buildContents(p), buildConfig(p))
	latency := time.Since(start)
	if err != nil {
		status, body := upstreamError(err)
		c.logger.Error().Err(err).
			Str("model", c.cfg.Model).
			Int("status", status).
			Dur("latency", latency).
			Msg("调用生成接口失败")
		err = apperr.NewNetworkFailure(op, status, body, err)
		if status != 0 {
			tracing.RecordHTTPError(span, err, status)
		} else {
			tracing.RecordError(span, err, tracing.ErrorTypeUpstream)
		}
		return nil, err
	}

	if !hasCandidateOutput(resp) {
		err = apperr.NewEmptyResponse(op, emptyReason(resp))
		tracing.RecordError(span, err, tracing.ErrorTypeUpstream)
		return nil, err
	}

	span.SetAttributes(attribute.Int("gemini.candidates", len(resp.Candidates)))
	c.logger.Debug().
		Str("model", c.cfg.Model).
		Str("mode", string(p.Mode)).
		Int("candidates", len(resp.Candidates)).
		Dur("latency", latency).
		Msg("生成接口返回")
	return resp, nil
}

func buildContents(p *prompt.Prompt) []*genai.Content {
	parts := make([]*genai.Part, 0, 2)
	if p.UserMessage != "" {
		parts = append(parts, &genai.Part{Text: p.UserMessage})
	}
	if p.Image != nil && len(p.Image.Data) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: p.Image.MIMEType, Data: p.Image.Data}})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}
}

func buildConfig(p *prompt.Prompt) *genai.GenerateContentConfig {
	params := p.Params
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(params.Temperature),
		MaxOutputTokens:  params.MaxOutputTokens,
		ResponseMIMEType: params.ResponseMIMEType,
		StopSequences:    params.StopSequences,
	}
	if p.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: p.SystemInstruction}}}
	}
	if params.TopP > 0 {
		cfg.TopP = genai.Ptr(params.TopP)
	}
	if params.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(params.TopK))
	}
	if params.ThinkingBudget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(*params.ThinkingBudget),
		}
	}
	return cfg
}

// upstreamError 从 SDK 错误中取出 HTTP 状态码和响应内容，非 HTTP 错误返回 0
func upstreamError(err error) (int, string) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErrorBody(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrorBody(*apiErrPtr)
	}
	return 0, ""
}

func apiErrorBody(e genai.APIError) string {
	body, err := json.Marshal(map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
		"status":  e.Status,
		"details": e.Details,
	})
	if err != nil {
		return e.Message
	}
	return string(body)
}

func hasCandidateOutput(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	for _, cand := range resp.Candidates {
		if cand != nil && cand.Content != nil && len(cand.Content.Parts) > 0 {
			return true
		}
	}
	return false
}

func emptyReason(resp *genai.GenerateContentResponse) string {
	switch {
	case resp == nil:
		return "nil response"
	case resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "":
		return "prompt blocked: " + string(resp.PromptFeedback.BlockReason)
	case len(resp.Candidates) == 0:
		return "no candidates"
	}
	if cand := resp.Candidates[0]; cand != nil && cand.FinishReason != "" {
		return "candidate has no content, finish reason " + string(cand.FinishReason)
	}
	return "candidate has no content"
}
