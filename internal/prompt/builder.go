package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/types"
)

// Mode 生成模式
type Mode string

const (
	// ModeExtract 从原始文本/图片中提取简历
	ModeExtract Mode = "extract"
	// ModeOptimize 针对目标岗位改写简历
	ModeOptimize Mode = "optimize"
)

// Valid 判断模式是否已知
func (m Mode) Valid() bool {
	return m == ModeExtract || m == ModeOptimize
}

// PolishKind 润色的文本类型
type PolishKind string

const (
	PolishBullet    PolishKind = "bullet"
	PolishSummary   PolishKind = "summary"
	PolishEducation PolishKind = "education"
)

// MIMETypeJSON 结构化输出使用的响应类型
const MIMETypeJSON = "application/json"

// GenerationParams 采样参数。TopP、TopK 为 0 表示不下发，使用服务端默认值
type GenerationParams struct {
	Temperature      float32
	TopP             float32
	TopK             int32
	MaxOutputTokens  int32
	ResponseMIMEType string
	StopSequences    []string
	// ThinkingBudget 为 nil 时不下发 thinkingConfig
	ThinkingBudget *int32
}

// Prompt 一次生成请求的全部内容
type Prompt struct {
	Mode              Mode
	SystemInstruction string
	UserMessage       string
	Image             *types.Image
	Params            GenerationParams
}

// Request 构造提示词的输入
type Request struct {
	Mode        Mode
	SourceText  string
	SourceImage *types.Image
	// TargetRole 目标岗位描述，仅 optimize 模式需要
	TargetRole string
}

// Settings 各模式的默认采样参数
type Settings struct {
	ExtractTemperature  float32 `yaml:"extract_temperature"`
	OptimizeTemperature float32 `yaml:"optimize_temperature"`
	PolishTemperature   float32 `yaml:"polish_temperature"`
	OptimizeTopP        float32 `yaml:"optimize_top_p"`
	TopK                int32   `yaml:"top_k"`
	MaxOutputTokens     int32   `yaml:"max_output_tokens"`
	PolishMaxTokens     int32   `yaml:"polish_max_tokens"`
	ThinkingBudget      int32   `yaml:"thinking_budget"`
}

// DefaultSettings 默认采样参数：抽取低温、关闭思考、输出上限足够容纳整份简历
func DefaultSettings() Settings {
	return Settings{
		ExtractTemperature:  0.1,
		OptimizeTemperature: 0.4,
		PolishTemperature:   0.7,
		OptimizeTopP:        0.95,
		MaxOutputTokens:     8192,
		PolishMaxTokens:     1024,
		ThinkingBudget:      0,
	}
}

// Builder 提示词构造器，无状态，可并发使用
type Builder struct {
	settings Settings
}

// Option 构造器选项
type Option func(*Builder)

// WithSettings 覆盖默认采样参数
func WithSettings(s Settings) Option {
	return func(b *Builder) {
		b.settings = s
	}
}

// NewBuilder 创建提示词构造器
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// Build 使用默认参数构造提示词
func Build(req Request) (*Prompt, error) {
	return defaultBuilder.Build(req)
}

// Build 根据模式构造系统指令、用户消息与采样参数。
// 文本和图片都为空，或 optimize 模式缺少目标岗位时返回 InvalidInput。
func (b *Builder) Build(req Request) (*Prompt, error) {
	const op = "prompt.build"

	if !req.Mode.Valid() {
		return nil, apperr.NewInvalidInput(op, fmt.Sprintf("unknown mode %q", req.Mode))
	}
	text := strings.TrimSpace(req.SourceText)
	if text == "" && req.SourceImage.Empty() {
		return nil, apperr.NewInvalidInput(op, "source text and image are both empty")
	}
	role := strings.TrimSpace(req.TargetRole)
	if req.Mode == ModeOptimize && role == "" {
		return nil, apperr.NewInvalidInput(op, "target role is required in optimize mode")
	}

	p := &Prompt{Mode: req.Mode}
	if !req.SourceImage.Empty() {
		p.Image = req.SourceImage
	}

	switch req.Mode {
	case ModeExtract:
		p.SystemInstruction = fmt.Sprintf(extractSystemTemplate, outputRules, fieldRules, SchemaExample)
		p.UserMessage = extractUserMessage(text, p.Image != nil)
		p.Params = b.structuredParams(b.settings.ExtractTemperature, 0)
	case ModeOptimize:
		p.SystemInstruction = fmt.Sprintf(optimizeSystemTemplate, outputRules, fieldRules, SchemaExample)
		p.UserMessage = optimizeUserMessage(text, role, p.Image != nil)
		p.Params = b.structuredParams(b.settings.OptimizeTemperature, b.settings.OptimizeTopP)
	}
	return p, nil
}

// BuildPolish 构造单段文本润色的提示词，输出为纯文本
func (b *Builder) BuildPolish(text string, kind PolishKind) (*Prompt, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.NewInvalidInput("prompt.polish", "text is empty")
	}
	instruction, ok := polishInstructions[kind]
	if !ok {
		instruction = polishInstructions[PolishBullet]
	}
	budget := b.settings.ThinkingBudget
	return &Prompt{
		SystemInstruction: instruction,
		UserMessage:       text,
		Params: GenerationParams{
			Temperature:     b.settings.PolishTemperature,
			MaxOutputTokens: b.settings.PolishMaxTokens,
			ThinkingBudget:  &budget,
		},
	}, nil
}

func (b *Builder) structuredParams(temperature, topP float32) GenerationParams {
	budget := b.settings.ThinkingBudget
	return GenerationParams{
		Temperature:      temperature,
		TopP:             topP,
		TopK:             b.settings.TopK,
		MaxOutputTokens:  b.settings.MaxOutputTokens,
		ResponseMIMEType: MIMETypeJSON,
		ThinkingBudget:   &budget,
	}
}

func extractUserMessage(text string, hasImage bool) string {
	var sb strings.Builder
	switch {
	case text != "" && hasImage:
		sb.WriteString("请从以下简历文本中提取信息，并参考附带的简历图片补充缺失内容：\n")
	case text != "":
		sb.WriteString("请从以下简历文本中提取信息：\n")
	default:
		sb.WriteString("请从附带的简历图片中提取全部信息。")
		return sb.String()
	}
	sb.WriteString(`"""` + "\n")
	sb.WriteString(text)
	sb.WriteString("\n" + `"""`)
	return sb.String()
}

func optimizeUserMessage(text, role string, hasImage bool) string {
	var sb strings.Builder
	sb.WriteString("目标岗位：\n\"\"\"\n")
	sb.WriteString(role)
	sb.WriteString("\n\"\"\"\n\n")
	if text != "" {
		sb.WriteString("当前简历内容：\n\"\"\"\n")
		sb.WriteString(text)
		sb.WriteString("\n\"\"\"\n\n")
	}
	if hasImage {
		sb.WriteString("附带的图片是当前简历，请一并参考。\n\n")
	}
	sb.WriteString("请输出针对该岗位优化后的完整简历 JSON。")
	return sb.String()
}

// DocumentContext 把现有简历序列化为提示词上下文，去掉头像避免浪费 token
func DocumentContext(doc *types.ResumeDocument) string {
	if doc == nil {
		return ""
	}
	cp := types.Clone(*doc)
	cp.Personal.Photo = ""
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
