package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/nova-ai/backend/internal/model/chat"
	"github.com/zhouzirui/nova-ai/backend/internal/model/persona"
	"github.com/zhouzirui/nova-ai/backend/internal/service/ai"
	"github.com/zhouzirui/nova-ai/backend/internal/service/translate"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

var (
	// ErrEmptyMessage rejects a blank or whitespace-only chat message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrUnavailable is returned while no generation backend is configured.
	ErrUnavailable = errors.New("generation backend is not configured")
)

// Generator produces a reply for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PostProcessor rewrites a reply before it is stored, e.g. by translating it.
type PostProcessor interface {
	Process(ctx context.Context, reply string) translate.Result
}

// DocumentSource supplies the active document text, "" when none.
type DocumentSource interface {
	Text() string
}

// SendRequest is one user message.
type SendRequest struct {
	// SessionID selects the conversation; empty starts a new one.
	SessionID string
	Persona   persona.Persona
	Message   string
}

// Exchange is the outcome of a successful Send.
type Exchange struct {
	SessionID     string    `json:"sessionId"`
	UserTurn      chat.Turn `json:"userTurn"`
	AssistantTurn chat.Turn `json:"assistantTurn"`
	Translated    bool      `json:"translated"`
	Language      string    `json:"language,omitempty"`
	Warnings      []string  `json:"warnings,omitempty"`
}

// Service runs the interaction pipeline: compose, generate, post-process, store.
type Service struct {
	store     *Store
	generator Generator
	post      PostProcessor
	documents DocumentSource
}

// NewService wires the pipeline. generator may be nil, in which case Send
// fails with ErrUnavailable; post and documents are optional.
func NewService(store *Store, generator Generator, post PostProcessor, documents DocumentSource) *Service {
	if store == nil {
		store = NewStore()
	}
	return &Service{
		store:     store,
		generator: generator,
		post:      post,
		documents: documents,
	}
}

// Store exposes the session store for the history endpoints.
func (s *Service) Store() *Store {
	return s.store
}

// Ready reports whether a generation backend is wired.
func (s *Service) Ready() bool {
	return s.generator != nil
}

// Send composes the prompt, asks the generator and records both turns.
// The store is only touched after generation succeeded, so a failed call
// leaves the session exactly as it was.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Exchange, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	if !s.Ready() {
		return nil, ErrUnavailable
	}

	var documentText string
	if s.documents != nil {
		documentText = s.documents.Text()
	}
	prompt := ai.ComposePrompt(req.Persona, documentText, req.Message)

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Errorf("[chat] generation failed, persona=%s: %v", req.Persona, err)
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	exchange := &Exchange{}
	if s.post != nil {
		result := s.post.Process(ctx, reply)
		reply = result.Text
		exchange.Translated = result.Translated
		exchange.Language = result.Language
		if result.Err != nil {
			exchange.Warnings = append(exchange.Warnings, fmt.Sprintf("Translation skipped due to error: %v", result.Err))
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.store.Create()
		log.Infof("[chat] new session %q", sessionID)
	}

	s.store.Append(sessionID, chat.RoleUser, prompt)
	s.store.Append(sessionID, chat.RoleAssistant, reply)

	exchange.SessionID = sessionID
	exchange.UserTurn = chat.Turn{Role: chat.RoleUser, Content: prompt}
	exchange.AssistantTurn = chat.Turn{Role: chat.RoleAssistant, Content: reply}
	return exchange, nil
}
