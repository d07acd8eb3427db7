package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Translator renders text in the target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// LLMTranslator asks the chat model for a translation.
type LLMTranslator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewLLMTranslator compiles the translation chain over chatModel, which is
// normally the same model that produced the reply.
func NewLLMTranslator(ctx context.Context, chatModel model.ChatModel) (*LLMTranslator, error) {
	if chatModel == nil {
		return nil, errors.New("translator requires a chat model")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(translateSystemPrompt),
		schema.UserMessage("{text}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile translation chain: %w", err)
	}
	return &LLMTranslator{chain: runnable}, nil
}

// Translate implements Translator.
func (t *LLMTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	msg, err := t.chain.Invoke(ctx, map[string]any{
		"language": target,
		"text":     text,
	})
	if err != nil {
		return "", fmt.Errorf("translation chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", errors.New("translation chain returned empty text")
	}
	return strings.TrimSpace(msg.Content), nil
}

const translateSystemPrompt = "You are a translation engine. Translate the user's message into the language with ISO 639-1 code \"{language}\". Keep formatting, code blocks and emoji unchanged. Reply with the translation only."
