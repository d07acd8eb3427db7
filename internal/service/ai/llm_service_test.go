package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/nova-ai/backend/internal/config"
)

type fakeChatModel struct {
	reply  *schema.Message
	err    error
	inputs [][]*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func TestGenerateSendsPromptAsSingleUserMessage(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("hi there", nil)}
	svc, err := NewServiceWithModel(context.Background(), fake)
	require.NoError(t, err)

	reply, err := svc.Generate(context.Background(), "hello {not a placeholder}")
	require.NoError(t, err)

	assert.Equal(t, "hi there", reply)
	require.Len(t, fake.inputs, 1)
	require.Len(t, fake.inputs[0], 1)
	assert.Equal(t, schema.User, fake.inputs[0][0].Role)
	assert.Equal(t, "hello {not a placeholder}", fake.inputs[0][0].Content)
}

func TestGenerateSubstitutesPlaceholderForEmptyReply(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("   ", nil)}
	svc, err := NewServiceWithModel(context.Background(), fake)
	require.NoError(t, err)

	reply, err := svc.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, NoResponseText, reply)
}

func TestGeneratePropagatesModelFailure(t *testing.T) {
	boom := errors.New("upstream unavailable")
	svc, err := NewServiceWithModel(context.Background(), &fakeChatModel{err: boom})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewChatModelRequiresCredentials(t *testing.T) {
	_, err := NewChatModel(context.Background(), config.AIConfig{Provider: config.ProviderGemini, Model: "gemini-1.5-flash"})
	assert.ErrorIs(t, err, config.ErrGenerationKeyMissing)
}

func TestNewChatModelGemini(t *testing.T) {
	cm, err := NewChatModel(context.Background(), config.AIConfig{
		Provider: config.ProviderGemini,
		APIKey:   "key",
		Model:    "gemini-1.5-flash",
		BaseURL:  "https://example.invalid/v1beta/openai/",
	})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIChatModel{}, cm)
}
