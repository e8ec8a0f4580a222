// Package token tracks revoked refresh tokens so that logout invalidates
// a session before its refresh token expires.
package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store records refresh-token revocations keyed by JWT ID.
type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Close() error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis using a URL of the form
// redis://[:password@]host:port/db.
func NewRedisStore(ctx context.Context, url string) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &redisStore{client: client}, nil
}

func (s *redisStore) key(jti string) string {
	return "revoked:" + jti
}

func (s *redisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *redisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

type memoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryStore keeps revocations in process memory. Used when redis is
// disabled and in tests. Revocations do not survive a restart.
func NewMemoryStore() Store {
	return &memoryStore{revoked: map[string]time.Time{}}
}

func (s *memoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

func (s *memoryStore) Close() error { return nil }
