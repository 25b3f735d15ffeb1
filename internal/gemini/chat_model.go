package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/parser"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/types"
)

// ErrToolsUnsupported 生成接口按纯文本使用，不支持工具调用
var ErrToolsUnsupported = errors.New("gemini chat model does not support tool calling")

// ChatModel 把 Client 适配为 eino 的 ToolCallingChatModel：
// system 消息合并为系统指令，其余消息合并为一条用户消息，
// 返回值是经过片段选择后的回答文本
type ChatModel struct {
	client *Client
	params prompt.GenerationParams
}

var _ model.ToolCallingChatModel = (*ChatModel)(nil)

// NewChatModel 创建适配器，params 为默认采样参数，可被调用时的 model.Option 覆盖
func NewChatModel(client *Client, params prompt.GenerationParams) *ChatModel {
	return &ChatModel{client: client, params: params}
}

// Generate 实现 model.BaseChatModel
func (m *ChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	p, err := m.toPrompt(messages, opts...)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Generate(ctx, p)
	if err != nil {
		return nil, err
	}
	text, err := parser.SelectAnswerFragment(resp)
	if err != nil {
		return nil, err
	}
	msg := schema.AssistantMessage(text, nil)
	if resp.UsageMetadata != nil {
		msg.ResponseMeta = &schema.ResponseMeta{
			Usage: &schema.TokenUsage{
				PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
				TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			},
		}
	}
	return msg, nil
}

// Stream 生成接口只调用一次，结果作为单元素的流返回
func (m *ChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// WithTools 实现 model.ToolCallingChatModel；没有工具时返回自身
func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if len(tools) > 0 {
		return nil, ErrToolsUnsupported
	}
	return m, nil
}

func (m *ChatModel) toPrompt(messages []*schema.Message, opts ...model.Option) (*prompt.Prompt, error) {
	const op = "gemini.chat"

	var system, user []string
	var image *types.Image
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		if msg.Role == schema.System {
			if s := strings.TrimSpace(msg.Content); s != "" {
				system = append(system, s)
			}
			continue
		}
		if s := strings.TrimSpace(msg.Content); s != "" {
			user = append(user, s)
		}
		for _, part := range msg.MultiContent {
			switch part.Type {
			case schema.ChatMessagePartTypeText:
				if s := strings.TrimSpace(part.Text); s != "" {
					user = append(user, s)
				}
			case schema.ChatMessagePartTypeImageURL:
				if part.ImageURL == nil || image != nil {
					continue
				}
				img, err := types.ParseDataURL(part.ImageURL.URL)
				if err != nil {
					return nil, apperr.NewInvalidInput(op, err.Error())
				}
				image = img
			}
		}
	}
	if len(user) == 0 && image == nil {
		return nil, apperr.NewInvalidInput(op, "no user content in messages")
	}

	params := m.params
	common := model.GetCommonOptions(&model.Options{}, opts...)
	if common.Temperature != nil {
		params.Temperature = *common.Temperature
	}
	if common.TopP != nil {
		params.TopP = *common.TopP
	}
	if common.MaxTokens != nil {
		params.MaxOutputTokens = int32(*common.MaxTokens)
	}
	if len(common.Stop) > 0 {
		params.StopSequences = common.Stop
	}

	return &prompt.Prompt{
		SystemInstruction: strings.Join(system, "\n\n"),
		UserMessage:       strings.Join(user, "\n\n"),
		Image:             image,
		Params:            params,
	}, nil
}
