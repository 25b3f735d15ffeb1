package parser

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/tracing"
	"resume-ai-go/internal/types"
)

// Layer 成功解析出文档的恢复层
type Layer string

const (
	LayerDirect        Layer = "direct"
	LayerCandidate     Layer = "candidate"
	LayerBraceSpan     Layer = "brace_span"
	LayerKeywordAnchor Layer = "keyword_anchor"
	LayerRepair        Layer = "repair"
	LayerAggressive    Layer = "aggressive_repair"
	LayerSalvage       Layer = "salvage"
)

const (
	defaultSnippetRadius = 80
	maxCandidates        = 8
)

// Result 提取结果
type Result struct {
	Document *types.ResumeDocument
	Layer    Layer
	// Partial 为 true 表示只捞回了姓名和求职意向
	Partial bool
}

// Extractor 把模型输出的文本转换为简历文档
type Extractor struct {
	salvage       bool
	logger        zerolog.Logger
	snippetRadius int
	placeholders  []string
	validator     *documentValidator
}

// ExtractorOption 配置 Extractor
type ExtractorOption func(*Extractor)

// WithPartialSalvage 所有修复都失败时，允许只返回姓名和求职意向
func WithPartialSalvage(enabled bool) ExtractorOption {
	return func(e *Extractor) {
		e.salvage = enabled
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithSnippetRadius 设置错误信息中附带的上下文长度
func WithSnippetRadius(radius int) ExtractorOption {
	return func(e *Extractor) {
		if radius > 0 {
			e.snippetRadius = radius
		}
	}
}

// WithPlaceholderFields 设置解析前要删除的字段，这些字段由调用方提供而不是模型
func WithPlaceholderFields(fields ...string) ExtractorOption {
	return func(e *Extractor) {
		e.placeholders = fields
	}
}

// NewExtractor 创建提取器
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		logger:        zerolog.Nop(),
		snippetRadius: defaultSnippetRadius,
		placeholders:  []string{"photo"},
		validator:     defaultValidator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultValidator = mustDocumentValidator()

func mustDocumentValidator() *documentValidator {
	v, err := newDocumentValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Extract 提取简历文档
func (e *Extractor) Extract(text string) (*types.ResumeDocument, error) {
	res, err := e.ExtractDetailed(text)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// recoveryLayer 一层恢复：从清理后的文本产生若干待解析的候选
type recoveryLayer struct {
	name  Layer
	texts func(cleaned string) []string
}

// recoveryLayers 按顺序尝试，第一个解析成功且结构合理的候选即为结果
var recoveryLayers = []recoveryLayer{
	{LayerDirect, func(s string) []string { return []string{s} }},
	{LayerCandidate, func(s string) []string {
		cands := scanCandidates(s)
		if len(cands) > maxCandidates {
			cands = cands[:maxCandidates]
		}
		out := make([]string, 0, len(cands))
		for _, c := range cands {
			out = append(out, c.text)
		}
		return out
	}},
	{LayerBraceSpan, func(s string) []string { return optional(braceSpan(s)) }},
	{LayerKeywordAnchor, func(s string) []string { return optional(keywordSpan(s)) }},
	{LayerRepair, func(s string) []string { return mapSpans(s, repairSyntax) }},
	{LayerAggressive, func(s string) []string { return mapSpans(s, aggressiveRepair) }},
}

func optional(s string, ok bool) []string {
	if !ok {
		return nil
	}
	return []string{s}
}

// repairSpans 修复层的输入：最佳候选、关键字锚点、首个 { 到结尾、首尾花括号。
// 截断的输出中首尾花括号只覆盖到最后一个闭合的子对象，所以排在最后。
func repairSpans(s string) []string {
	var spans []string
	if cands := scanCandidates(s); len(cands) > 0 {
		spans = append(spans, cands[0].text)
	}
	spans = append(spans, optional(keywordSpan(s))...)
	spans = append(spans, optional(openTail(s))...)
	spans = append(spans, optional(braceSpan(s))...)
	return spans
}

func mapSpans(s string, fix func(string) string) []string {
	spans := repairSpans(s)
	out := make([]string, 0, len(spans))
	for _, span := range spans {
		out = append(out, fix(span))
	}
	return out
}

// ExtractDetailed 与 Extract 相同，额外返回成功的恢复层
func (e *Extractor) ExtractDetailed(text string) (*Result, error) {
	const op = "parser.extract"

	cleaned := e.clean(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil, apperr.NewExtractionFailed(op, "model output is empty", 0, "", nil)
	}

	tried := make(map[string]bool)
	for _, layer := range recoveryLayers {
		for _, candidate := range layer.texts(cleaned) {
			if candidate == "" || tried[candidate] {
				continue
			}
			tried[candidate] = true

			doc, err := e.validator.decode(candidate)
			if err != nil {
				e.logger.Debug().Str("layer", string(layer.name)).Err(err).Msg("候选解析失败")
				continue
			}
			types.Normalize(doc)
			e.logger.Debug().
				Str("layer", string(layer.name)).
				Int("sections", doc.SectionCount()).
				Msg("简历提取成功")
			return &Result{Document: doc, Layer: layer.name}, nil
		}
	}

	if e.salvage {
		if doc, ok := salvage(cleaned); ok {
			types.Normalize(doc)
			e.logger.Warn().
				Str("name", tracing.MaskPII(doc.Personal.Name)).
				Msg("结构修复失败，仅恢复了部分字段")
			return &Result{Document: doc, Layer: LayerSalvage, Partial: true}, nil
		}
	}

	return nil, e.failure(op, cleaned)
}

// clean 去掉代码块标记、思考过程和占位字段
func (e *Extractor) clean(text string) string {
	s := stripFences(StripReasoningPreamble(text))
	for _, field := range e.placeholders {
		s = exciseField(s, field)
	}
	return strings.TrimSpace(s)
}

// failure 针对最可能是文档的那段文本重新解析，用它的错误位置构造诊断信息
func (e *Extractor) failure(op, cleaned string) error {
	primary := cleaned
	if span, ok := braceSpan(cleaned); ok {
		primary = span
	} else if span, ok := keywordSpan(cleaned); ok {
		primary = span
	}

	if !strings.Contains(primary, "{") {
		return apperr.NewExtractionFailed(op, "no JSON object found in model output", 0,
			tracing.Snippet(primary, 0, e.snippetRadius), nil)
	}

	_, err := e.validator.decode(primary)
	if err == nil {
		err = errors.New("candidate rejected")
	}
	offset := errorOffset(err, len(primary))
	return apperr.NewExtractionFailed(op, err.Error(), offset,
		tracing.Snippet(primary, offset, e.snippetRadius), err)
}

// errorOffset 从 JSON 错误中取出字节偏移
func errorOffset(err error, textLen int) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return int64(textLen)
	}
	return 0
}
