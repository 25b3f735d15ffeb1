package handler

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/processor"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/tracing"
	"resume-ai-go/internal/types"
)

// AutofillRequest extract 与 optimize 的请求体
type AutofillRequest struct {
	Text string `json:"text"`
	// Image data:<mime>;base64,<payload> 形式的简历截图
	Image      string                `json:"image,omitempty"`
	TargetRole string                `json:"target_role,omitempty"`
	Existing   *types.ResumeDocument `json:"existing,omitempty"`
}

// AutofillResponse 合并后的文档
type AutofillResponse struct {
	Document types.ResumeDocument `json:"document"`
	Layer    string               `json:"layer"`
	Partial  bool                 `json:"partial"`
	Cached   bool                 `json:"cached"`
}

// PolishRequest 润色请求体
type PolishRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind,omitempty"`
}

// PolishResponse 润色结果，失败时为原文
type PolishResponse struct {
	Text string `json:"text"`
}

// ErrorResponse 失败时的响应体
type ErrorResponse struct {
	Error apperr.Report `json:"error"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status               string `json:"status"`
	Model                string `json:"model"`
	CredentialConfigured bool   `json:"credential_configured"`
}

// AutofillHandler 编辑器与自动填充流程之间的边界：
// 请求里带上编辑器当前的文档，响应里给出合并后的新文档
type AutofillHandler struct {
	processor     *processor.AutofillProcessor
	polisher      *processor.Polisher
	model         string
	hasCredential bool
	logger        zerolog.Logger
}

// NewAutofillHandler 创建处理器
func NewAutofillHandler(
	autofill *processor.AutofillProcessor,
	polisher *processor.Polisher,
	model string,
	hasCredential bool,
	logger zerolog.Logger,
) *AutofillHandler {
	return &AutofillHandler{
		processor:     autofill,
		polisher:      polisher,
		model:         model,
		hasCredential: hasCredential,
		logger:        logger,
	}
}

// HandleAutofill 执行一次 extract 或 optimize
func (h *AutofillHandler) HandleAutofill(ctx context.Context, mode prompt.Mode, req *AutofillRequest) (*AutofillResponse, error) {
	var image *types.Image
	if strings.TrimSpace(req.Image) != "" {
		img, err := types.ParseDataURL(req.Image)
		if err != nil {
			return nil, apperr.NewInvalidInput("api.autofill", err.Error())
		}
		image = img
	}

	res, err := h.processor.Run(ctx, processor.Request{
		Mode:       mode,
		Text:       req.Text,
		Image:      image,
		TargetRole: req.TargetRole,
		Existing:   req.Existing,
	})
	if err != nil {
		report := apperr.Classify(err)
		h.logger.Warn().
			Str("mode", string(mode)).
			Str("kind", string(report.Kind)).
			Str("detail", tracing.TruncateString(report.Detail, 300)).
			Msg("自动填充失败")
		return nil, err
	}
	return &AutofillResponse{
		Document: res.Document,
		Layer:    string(res.Layer),
		Partial:  res.Partial,
		Cached:   res.Cached,
	}, nil
}

// HandlePolish 润色单段文本，不会失败
func (h *AutofillHandler) HandlePolish(ctx context.Context, req *PolishRequest) *PolishResponse {
	kind := prompt.PolishKind(req.Kind)
	if kind == "" {
		kind = prompt.PolishBullet
	}
	return &PolishResponse{Text: h.polisher.Polish(ctx, req.Text, kind)}
}

// Health 返回服务状态
func (h *AutofillHandler) Health() *HealthResponse {
	return &HealthResponse{
		Status:               "ok",
		Model:                h.model,
		CredentialConfigured: h.hasCredential,
	}
}
