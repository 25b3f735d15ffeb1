package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Report 面向界面的错误报告：Message 给用户看，Detail 给排查问题的人看
type Report struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

var userMessages = map[Kind]string{
	KindMissingCredential:     "未配置 API Key，请在环境变量 GEMINI_API_KEY 或配置文件中设置后重试。",
	KindInvalidInput:          "请输入简历文本或上传图片；优化简历时还需要填写目标岗位。",
	KindNetworkFailure:        "调用 AI 服务失败，请检查网络或 API Key 后重试。",
	KindUpstreamEmptyResponse: "AI 服务没有返回内容，请稍后重试。",
	KindExtractionFailed:      "AI 返回的内容无法解析为简历，请调整输入后重试。",
	KindUnknown:               "发生未知错误，请稍后重试。",
}

// maxDetailBody 诊断信息中保留的上游响应体长度
const maxDetailBody = 500

// Classify 把任意错误映射为错误报告，nil 返回零值
func Classify(err error) Report {
	if err == nil {
		return Report{}
	}

	kind := KindOf(err)
	if kind == KindUnknown && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		kind = KindNetworkFailure
	}

	return Report{
		Kind:    kind,
		Message: userMessages[kind],
		Detail:  diagnostic(err),
	}
}

func diagnostic(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}

	var parts []string
	switch appErr.Kind() {
	case KindNetworkFailure:
		if appErr.StatusCode != 0 {
			parts = append(parts, fmt.Sprintf("status=%d %s", appErr.StatusCode, http.StatusText(appErr.StatusCode)))
		}
		if appErr.Body != "" {
			parts = append(parts, "body="+truncate(appErr.Body, maxDetailBody))
		}
		if appErr.Cause != nil {
			parts = append(parts, appErr.Cause.Error())
		}
	case KindExtractionFailed:
		parts = append(parts, appErr.Detail)
		parts = append(parts, fmt.Sprintf("offset=%d", appErr.Offset))
		if appErr.Snippet != "" {
			parts = append(parts, fmt.Sprintf("near=%q", appErr.Snippet))
		}
	default:
		if appErr.Detail != "" {
			parts = append(parts, appErr.Detail)
		}
		if appErr.Cause != nil {
			parts = append(parts, appErr.Cause.Error())
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: %s", appErr.Op, appErr.BaseErr)
	}
	return appErr.Op + ": " + strings.Join(parts, "; ")
}

// HTTPStatus 错误分类对应的 HTTP 状态码
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindMissingCredential:
		return http.StatusServiceUnavailable
	case KindNetworkFailure, KindUpstreamEmptyResponse:
		return http.StatusBadGateway
	case KindExtractionFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
