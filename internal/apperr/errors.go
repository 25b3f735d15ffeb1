package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 失败分类，对外只暴露这几种
type Kind string

const (
	KindMissingCredential     Kind = "MissingCredential"
	KindInvalidInput          Kind = "InvalidInput"
	KindNetworkFailure        Kind = "NetworkFailure"
	KindUpstreamEmptyResponse Kind = "UpstreamEmptyResponse"
	KindExtractionFailed      Kind = "ExtractionFailed"
	KindUnknown               Kind = "Unknown"
)

// 基础错误，配合 errors.Is 使用
var (
	ErrMissingCredential = errors.New("未配置模型访问凭证")
	ErrInvalidInput      = errors.New("输入无效")
	ErrNetworkFailure    = errors.New("调用模型服务失败")
	ErrEmptyResponse     = errors.New("模型返回空响应")
	ErrExtractionFailed  = errors.New("无法从模型输出中解析简历")
)

var kindBase = map[Kind]error{
	KindMissingCredential:     ErrMissingCredential,
	KindInvalidInput:          ErrInvalidInput,
	KindNetworkFailure:        ErrNetworkFailure,
	KindUpstreamEmptyResponse: ErrEmptyResponse,
	KindExtractionFailed:      ErrExtractionFailed,
}

// Error 流水线各阶段返回的错误
type Error struct {
	Op      string // 出错的阶段，例如 prompt.build、gemini.generate
	BaseErr error  // 基础错误，决定 Kind
	Detail  string

	// NetworkFailure 时的上游状态码与响应体
	StatusCode int
	Body       string

	// ExtractionFailed 时解析失败的位置与附近文本
	Offset  int64
	Snippet string

	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (操作:%s", e.BaseErr, e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ", 状态码:%d", e.StatusCode)
	}
	b.WriteString(")")
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *Error) Is(target error) bool {
	return e.BaseErr == target
}

// Kind 返回错误分类
func (e *Error) Kind() Kind {
	for kind, base := range kindBase {
		if e.BaseErr == base {
			return kind
		}
	}
	return KindUnknown
}

// 错误构造函数

func NewMissingCredential(op string) error {
	return &Error{Op: op, BaseErr: ErrMissingCredential}
}

func NewInvalidInput(op, detail string) error {
	return &Error{Op: op, BaseErr: ErrInvalidInput, Detail: detail}
}

// NewNetworkFailure statusCode 为 0 表示请求未得到 HTTP 响应
func NewNetworkFailure(op string, statusCode int, body string, cause error) error {
	return &Error{Op: op, BaseErr: ErrNetworkFailure, StatusCode: statusCode, Body: body, Cause: cause}
}

func NewEmptyResponse(op, detail string) error {
	return &Error{Op: op, BaseErr: ErrEmptyResponse, Detail: detail}
}

func NewExtractionFailed(op, reason string, offset int64, snippet string, cause error) error {
	return &Error{Op: op, BaseErr: ErrExtractionFailed, Detail: reason, Offset: offset, Snippet: snippet, Cause: cause}
}

// KindOf 返回任意错误对应的分类
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	for kind, base := range kindBase {
		if errors.Is(err, base) {
			return kind
		}
	}
	return KindUnknown
}
