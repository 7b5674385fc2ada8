package orchestrator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"helpdesk-assistant/internal/common/errors"
)

// Session is the per-conversation slot-filling state. One conversation owns
// one session; nothing is shared across session identifiers.
type Session struct {
	Draft           map[string]string `json:"draft"`
	AwaitingDetails bool              `json:"awaitingDetails"`
}

func NewSession() *Session {
	return &Session{Draft: make(map[string]string)}
}

// SessionStore persists sessions between turns. A missing session reads as
// (nil, nil).
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, sessionID string, session *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// ==========================
// In-Memory Store
// ==========================

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID], nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// ==========================
// Redis Store
// ==========================

// RedisStore keeps sessions in Redis so conversations survive a process
// restart when the deployment wants that.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return "session:" + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewSessionStoreError(err)
	}

	var session Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, errors.NewSessionStoreError(err)
	}
	if session.Draft == nil {
		session.Draft = make(map[string]string)
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.NewSessionStoreError(err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return errors.NewSessionStoreError(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return errors.NewSessionStoreError(err)
	}
	return nil
}
