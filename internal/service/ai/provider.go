package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/nova-ai/backend/internal/config"
)

// NewChatModel builds the chat model of the configured provider.
func NewChatModel(ctx context.Context, cfg config.AIConfig) (model.ChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var temperature *float32
	if cfg.Temperature != nil {
		val := float32(*cfg.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if cfg.MaxTokens != nil {
		val := *cfg.MaxTokens
		maxTokens = &val
	}

	switch cfg.Provider {
	case config.ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     cfg.Ark.BaseURL,
			Region:      cfg.Ark.Region,
			APIKey:      cfg.Ark.APIKey,
			AccessKey:   cfg.Ark.AccessKey,
			SecretKey:   cfg.Ark.SecretKey,
			Model:       cfg.Ark.Model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
	case config.ProviderGemini:
		return NewOpenAIChatModel(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
