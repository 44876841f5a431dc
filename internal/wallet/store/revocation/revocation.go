// Package revocation tracks disconnected wallet sessions until their tokens
// would have expired anyway.
package revocation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "land:trl:jti:"

// RedisList shares revocations across instances.
type RedisList struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisList {
	return &RedisList{client: client}
}

// RevokeToken marks jti revoked for ttl. A non-positive ttl is a no-op
// because the token has already expired.
func (l *RedisList) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryList is the single-process revocation list.
type MemoryList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemory() *MemoryList {
	return &MemoryList{revoked: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryList) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.revoked[jti] = now.Add(ttl)
	// expired entries are dropped opportunistically
	for k, until := range l.revoked {
		if !until.After(now) {
			delete(l.revoked, k)
		}
	}
	return nil
}

func (l *MemoryList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	return until.After(l.now()), nil
}
