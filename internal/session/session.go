// Package session holds the backend bearer token for a signed-in admin.
// A Session is created per request from the session cookie and passed
// through the request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the name of the cookie carrying the session ID
const CookieName = "rental_session"

var ErrNoToken = errors.New("no session token")

// Store persists tokens by session ID
type Store interface {
	Load(ctx context.Context, id string) (string, error)
	Save(ctx context.Context, id, token string) error
	Delete(ctx context.Context, id string) error
}

// Session is the single read/write/clear point for one user's token
type Session struct {
	id     string
	store  Store
	pinned bool
}

// New returns the session with the given ID
func New(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

// NewService returns a session for a process acting under a configured
// service token. Clear leaves its token in place.
func NewService(id string, store Store) *Session {
	return &Session{id: id, store: store, pinned: true}
}

// NewID generates a random session ID
func NewID() string {
	return uuid.NewString()
}

func (s *Session) ID() string { return s.id }

// Token returns the stored token, or ErrNoToken
func (s *Session) Token(ctx context.Context) (string, error) {
	if s == nil {
		return "", ErrNoToken
	}
	return s.store.Load(ctx, s.id)
}

func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.store.Save(ctx, s.id, token)
}

// Pinned reports whether the token survives Clear
func (s *Session) Pinned() bool {
	return s != nil && s.pinned
}

// Clear forgets the token, forcing the user to sign in again. It is a
// no-op for service sessions.
func (s *Session) Clear(ctx context.Context) error {
	if s == nil || s.pinned {
		return nil
	}
	return s.store.Delete(ctx, s.id)
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// MemoryStore keeps tokens in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[id]
	if !ok {
		return "", ErrNoToken
	}
	return token, nil
}

func (m *MemoryStore) Save(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[id] = token
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

// KeySession is the Redis key template: rental:session:{id} -> token
const KeySession = "rental:session:%s"

// RedisStore keeps tokens in Redis with a TTL
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (string, error) {
	token, err := r.rdb.Get(ctx, fmt.Sprintf(KeySession, id)).Result()
	if err == redis.Nil {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return token, nil
}

func (r *RedisStore) Save(ctx context.Context, id, token string) error {
	if err := r.rdb.Set(ctx, fmt.Sprintf(KeySession, id), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, fmt.Sprintf(KeySession, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
