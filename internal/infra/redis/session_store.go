package redis

import (
	"context"
	"sync"
	"time"

	"capital-quiz/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Game state lives in the local map; Redis only carries a liveness marker per player
// so other tooling can see who is mid-game.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(id string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(id), session.LastActive().UTC().Format(time.RFC3339), s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		_ = s.client.Expire(context.Background(), s.key(id), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
