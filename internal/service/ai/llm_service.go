package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/nova-ai/backend/internal/config"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

// NoResponseText replaces an empty model reply so the turn is still recorded.
const NoResponseText = "⚠️ No response from AI."

// Service sends composed prompts to the language model.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the chat model for cfg and compiles the generation chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel)
}

// NewServiceWithModel compiles the generation chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
	}, nil
}

// Generate runs one synchronous completion for prompt. A blank reply is
// replaced by NoResponseText; errors are returned as-is and never retried.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("failed to run generation chain: %w", err)
	}

	if response == nil || strings.TrimSpace(response.Content) == "" {
		log.Warnf("[ai] empty response for prompt of length=%d", len(prompt))
		return NoResponseText, nil
	}

	log.Infof("[ai] generated response, prompt length=%d, reply length=%d", len(prompt), len(response.Content))
	return response.Content, nil
}

// ChatModel exposes the underlying model so translation can share it.
func (s *Service) ChatModel() model.ChatModel {
	return s.chatModel
}
