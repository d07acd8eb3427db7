package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/nova-ai/backend/internal/model/chat"
	"github.com/zhouzirui/nova-ai/backend/internal/model/persona"
	"github.com/zhouzirui/nova-ai/backend/internal/service/ai"
	"github.com/zhouzirui/nova-ai/backend/internal/service/chat"
	"github.com/zhouzirui/nova-ai/backend/internal/service/translate"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

type fakePost struct {
	result translate.Result
}

func (p fakePost) Process(_ context.Context, reply string) translate.Result {
	r := p.result
	if r.Text == "" {
		r.Text = reply
	}
	r.Original = reply
	return r
}

type staticDocument string

func (d staticDocument) Text() string { return string(d) }

func TestSendStartsSessionAndRecordsTurns(t *testing.T) {
	store := chat.NewStore()
	gen := &fakeGenerator{reply: "hi there"}
	svc := chat.NewService(store, gen, nil, nil)

	ex, err := svc.Send(context.Background(), chat.SendRequest{Persona: persona.Normal, Message: "hello"})
	require.NoError(t, err)

	assert.NotEmpty(t, ex.SessionID)
	assert.Equal(t, []model.Turn{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi there"},
	}, store.Select(ex.SessionID))
	assert.Empty(t, ex.Warnings)
}

func TestSendAppendsToExistingSession(t *testing.T) {
	store := chat.NewStore()
	svc := chat.NewService(store, &fakeGenerator{reply: "ok"}, nil, nil)

	first, err := svc.Send(context.Background(), chat.SendRequest{Message: "one"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), chat.SendRequest{SessionID: first.SessionID, Message: "two"})
	require.NoError(t, err)

	assert.Len(t, store.Select(first.SessionID), 4)
	assert.Len(t, store.List(), 1)
}

func TestSendComposesPersonaAndDocument(t *testing.T) {
	gen := &fakeGenerator{reply: "because"}
	svc := chat.NewService(chat.NewStore(), gen, nil, staticDocument("Q3 revenue grew 12%."))

	ex, err := svc.Send(context.Background(), chat.SendRequest{Persona: persona.Teacher, Message: "Why?"})
	require.NoError(t, err)

	want := "Refer to the following document:\n\nQ3 revenue grew 12%.\n\nExplain concepts like a teacher to a student: Why?"
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, want, gen.prompts[0])
	assert.Equal(t, want, ex.UserTurn.Content)
}

func TestSendStoresTranslatedReply(t *testing.T) {
	store := chat.NewStore()
	post := fakePost{result: translate.Result{Text: "Hello!", Language: "es", Translated: true}}
	svc := chat.NewService(store, &fakeGenerator{reply: "¡Hola!"}, post, nil)

	ex, err := svc.Send(context.Background(), chat.SendRequest{Message: "greet me"})
	require.NoError(t, err)

	assert.True(t, ex.Translated)
	assert.Equal(t, "es", ex.Language)
	assert.Equal(t, "Hello!", store.Select(ex.SessionID)[1].Content)
}

func TestSendTranslationFailureBecomesWarning(t *testing.T) {
	store := chat.NewStore()
	post := fakePost{result: translate.Result{Err: errors.New("quota exceeded")}}
	svc := chat.NewService(store, &fakeGenerator{reply: "Bonjour"}, post, nil)

	ex, err := svc.Send(context.Background(), chat.SendRequest{Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Translation skipped due to error: quota exceeded"}, ex.Warnings)
	assert.Equal(t, "Bonjour", store.Select(ex.SessionID)[1].Content)
}

func TestSendGenerationFailureLeavesStoreUntouched(t *testing.T) {
	store := chat.NewStore()
	ok := chat.NewService(store, &fakeGenerator{reply: "first"}, nil, nil)
	ex, err := ok.Send(context.Background(), chat.SendRequest{Message: "hello"})
	require.NoError(t, err)

	boom := errors.New("503 from provider")
	failing := chat.NewService(store, &fakeGenerator{err: boom}, nil, nil)

	_, err = failing.Send(context.Background(), chat.SendRequest{SessionID: ex.SessionID, Message: "again"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.Select(ex.SessionID), 2)

	_, err = failing.Send(context.Background(), chat.SendRequest{Message: "new chat"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.List(), 1)
}

func TestSendPlaceholderReplyIsStored(t *testing.T) {
	store := chat.NewStore()
	svc := chat.NewService(store, &fakeGenerator{reply: ai.NoResponseText}, nil, nil)

	ex, err := svc.Send(context.Background(), chat.SendRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "⚠️ No response from AI.", store.Select(ex.SessionID)[1].Content)
}

func TestSendRejectsBlankMessage(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	svc := chat.NewService(chat.NewStore(), gen, nil, nil)

	_, err := svc.Send(context.Background(), chat.SendRequest{Message: "   "})

	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
	assert.Empty(t, gen.prompts)
}

func TestSendWithoutGenerator(t *testing.T) {
	svc := chat.NewService(nil, nil, nil, nil)

	assert.False(t, svc.Ready())
	_, err := svc.Send(context.Background(), chat.SendRequest{Message: "hello"})
	assert.ErrorIs(t, err, chat.ErrUnavailable)
}

func TestSuggestions(t *testing.T) {
	assert.Equal(t, []string{"What is AI?"}, chat.Suggestions("what"))
	assert.Equal(t, []string{"Explain Quantum Computing"}, chat.Suggestions("QUANTUM"))
	assert.Len(t, chat.Suggestions("i"), 3)
	assert.Empty(t, chat.Suggestions("  "))
	assert.Empty(t, chat.Suggestions("weather"))
}
