package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/ratelimit"
)

// MockLLMModel 测试用聊天模型，记录收到的消息与采样参数
type MockLLMModel struct {
	mockResponse string
	Err          error
	CallCount    int
	messages     []*schema.Message
	options      *model.Options
}

func (m *MockLLMModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.CallCount++
	m.messages = messages
	m.options = model.GetCommonOptions(&model.Options{}, opts...)
	if m.Err != nil {
		return nil, m.Err
	}
	return schema.AssistantMessage(m.mockResponse, nil), nil
}

func (m *MockLLMModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *MockLLMModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func TestPolisher_ReturnsTrimmedOutput(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "\n  负责订单服务重构，接口延迟降低 30%。 \n"}
	p := NewPolisher(mock)

	got := p.Polish(context.Background(), "做过订单服务", prompt.PolishBullet)
	assert.Equal(t, "负责订单服务重构，接口延迟降低 30%。", got)

	require.Equal(t, 1, mock.CallCount)
	require.Len(t, mock.messages, 2)
	assert.Equal(t, schema.System, mock.messages[0].Role)
	assert.Equal(t, "做过订单服务", mock.messages[1].Content)
	require.NotNil(t, mock.options.Temperature)
	assert.InDelta(t, 0.7, *mock.options.Temperature, 0.001)
}

func TestPolisher_EchoesInputOnFailure(t *testing.T) {
	const input = "  熟悉 Go  "
	tests := []struct {
		name  string
		model model.ToolCallingChatModel
	}{
		{"没有模型", nil},
		{"调用失败", &MockLLMModel{Err: errors.New("upstream 500")}},
		{"结果为空", &MockLLMModel{mockResponse: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, input, NewPolisher(tt.model).Polish(context.Background(), input, prompt.PolishSummary))
		})
	}
}

func TestPolisher_EmptyInputSkipsModel(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "不应出现"}
	got := NewPolisher(mock).Polish(context.Background(), "  ", prompt.PolishBullet)
	assert.Equal(t, "  ", got)
	assert.Equal(t, 0, mock.CallCount)
}

func TestPolisher_CustomSettingsAndRateLimit(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "ok"}
	settings := prompt.DefaultSettings()
	settings.PolishTemperature = 0.3
	settings.PolishMaxTokens = 128

	p := NewPolisher(ratelimit.WithBucket(mock, ratelimit.NewTokenBucket(600, 300)),
		WithPolishBuilder(prompt.NewBuilder(prompt.WithSettings(settings))))
	assert.Equal(t, "ok", p.Polish(context.Background(), "文本", prompt.PolishEducation))

	require.NotNil(t, mock.options.MaxTokens)
	assert.Equal(t, 128, *mock.options.MaxTokens)
	assert.InDelta(t, 0.3, *mock.options.Temperature, 0.001)
}
