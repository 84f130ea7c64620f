package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store persists sessions keyed by chat id. Sessions carry no TTL: a stale
// session sits untouched until the user resumes, cancels or issues /clear.
type Store interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, chatID int64, s Session) error
	Clear(ctx context.Context, chatID int64) error
}

// RedisStore keeps sessions as JSON values under support:session:<chat_id>.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func key(chatID int64) string { return fmt.Sprintf("support:session:%d", chatID) }

// Get returns the stored session, or a fresh idle one when none exists.
func (s *RedisStore) Get(ctx context.Context, chatID int64) (Session, error) {
	var sess Session
	raw, err := s.rdb.Get(ctx, key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("session get: %w", err)
	}
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt value is unrecoverable; start the chat over.
		return Session{}, nil
	}
	return sess, nil
}

func (s *RedisStore) Put(ctx context.Context, chatID int64, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.rdb.Set(ctx, key(chatID), raw, 0).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.rdb.Del(ctx, key(chatID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// MemoryStore is the fallback when Redis is unreachable at startup, and the
// store used by tests. Sessions then survive only as long as the process.
type MemoryStore struct {
	mu sync.Mutex
	m  map[int64]Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: make(map[int64]Session)} }

func (s *MemoryStore) Get(_ context.Context, chatID int64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID], nil
}

func (s *MemoryStore) Put(_ context.Context, chatID int64, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chatID] = sess
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
	return nil
}
