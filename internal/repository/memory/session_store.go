package memory

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"portfolio-chat-be/internal/repository/contract"
)

type sessionRecord struct {
	mu    sync.Mutex
	turns []contract.Turn
	flags map[string]bool
}

// SessionStore keeps sessions in process memory. Sessions never expire on
// their own; the cache is only used as a concurrent map with a stable API.
// Each session carries its own mutex so concurrent appends to the same
// session serialize without blocking unrelated sessions.
type SessionStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *SessionStore) record(sessionID string) *sessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(sessionID); ok {
		return v.(*sessionRecord)
	}
	rec := &sessionRecord{flags: make(map[string]bool)}
	s.cache.Set(sessionID, rec, gocache.NoExpiration)
	return rec
}

func (s *SessionStore) AppendTurn(_ context.Context, sessionID string, turn contract.Turn) error {
	rec := s.record(sessionID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.turns = append(rec.turns, turn)
	return nil
}

func (s *SessionStore) History(_ context.Context, sessionID string) ([]contract.Turn, error) {
	rec := s.record(sessionID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]contract.Turn, len(rec.turns))
	copy(out, rec.turns)
	return out, nil
}

func (s *SessionStore) Flags(_ context.Context, sessionID string) (map[string]bool, error) {
	rec := s.record(sessionID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make(map[string]bool, len(rec.flags))
	for k, v := range rec.flags {
		out[k] = v
	}
	return out, nil
}

func (s *SessionStore) MarkFlag(_ context.Context, sessionID, name string) error {
	rec := s.record(sessionID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.flags[name] = true
	return nil
}
