package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-ai-go/internal/apperr"
)

// ErrorType 错误类型，写入 span 的 error.type 属性便于过滤
type ErrorType string

const (
	ErrorTypeHTTP       ErrorType = "http"
	ErrorTypeRedis      ErrorType = "redis"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeCredential ErrorType = "credential"
	ErrorTypeUpstream   ErrorType = "upstream"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeInternal   ErrorType = "internal"
)

// ErrorTypeOf 把失败分类映射为 span 错误类型
func ErrorTypeOf(err error) ErrorType {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		return ErrorTypeValidation
	case apperr.KindMissingCredential:
		return ErrorTypeCredential
	case apperr.KindNetworkFailure, apperr.KindUpstreamEmptyResponse:
		return ErrorTypeUpstream
	case apperr.KindExtractionFailed:
		return ErrorTypeExtraction
	}
	return ErrorTypeInternal
}

// RecordError 记录错误，添加统一的错误类型和详情
func RecordError(span trace.Span, err error, errorType ErrorType) {
	RecordErrorWithInfo(span, err, errorType)
}

// RecordErrorWithInfo 记录错误并附加额外属性
func RecordErrorWithInfo(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", TruncateString(err.Error(), DefaultMaxLength)),
	)
	if kind := apperr.KindOf(err); kind != apperr.KindUnknown {
		span.SetAttributes(attribute.String("error.kind", string(kind)))
	}
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	span.SetStatus(codes.Error, err.Error())
}

// RecordHTTPError 记录上游 HTTP 错误，按状态码区分客户端/服务端错误
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	if span == nil || err == nil {
		return
	}

	var category string
	switch {
	case statusCode >= 400 && statusCode < 500:
		category = "client_error"
	case statusCode >= 500:
		category = "server_error"
	default:
		category = "unknown"
	}

	RecordErrorWithInfo(span, err, ErrorTypeHTTP,
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", category),
	)
}
