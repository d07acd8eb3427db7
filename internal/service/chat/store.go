package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/zhouzirui/nova-ai/backend/internal/model/chat"
)

// Store keeps every conversation of the running process in memory.
// Sessions are listed in creation order; nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	order    []string
	sessions map[string]*session
}

type session struct {
	createdAt time.Time
	turns     []chat.Turn
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock overrides the wall clock used to derive session keys.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new conversation keyed by the current time. A second
// session created within the same second gets a " #2", " #3", ... suffix.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	base := now.Format(chat.SessionIDLayout)
	id := base
	for n := 2; s.sessions[id] != nil; n++ {
		id = fmt.Sprintf("%s #%d", base, n)
	}

	s.insertLocked(id, now)
	return id
}

// Select returns a copy of the turns of id, or an empty slice when id is unknown.
func (s *Store) Select(id string) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return []chat.Turn{}
	}

	turns := make([]chat.Turn, len(sess.turns))
	copy(turns, sess.turns)
	return turns
}

// Append adds a turn to the end of id, creating the session when absent.
func (s *Store) Append(id string, role chat.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = s.insertLocked(id, s.now())
	}
	sess.turns = append(sess.turns, chat.Turn{Role: role, Content: content})
}

// Exists reports whether id names a stored session.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Delete removes id. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear drops every session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.sessions = make(map[string]*session)
}

// List summarises stored sessions in creation order.
func (s *Store) List() []chat.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]chat.Summary, 0, len(s.order))
	for _, id := range s.order {
		sess := s.sessions[id]
		summaries = append(summaries, chat.Summary{
			ID:        id,
			Turns:     len(sess.turns),
			CreatedAt: sess.createdAt,
		})
	}
	return summaries
}

func (s *Store) insertLocked(id string, createdAt time.Time) *session {
	sess := &session{createdAt: createdAt, turns: make([]chat.Turn, 0, 8)}
	s.sessions[id] = sess
	s.order = append(s.order, id)
	return sess
}
