package lockout

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockoutKeyPrefix = "land:lockout:"

// MemoryStore keeps failure records in process. Records whose window and
// lock have both lapsed are swept at most once per window.
type MemoryStore struct {
	mu        sync.Mutex
	records   map[string]*Record
	lastSweep time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) RecordFailure(_ context.Context, key string, now time.Time, window time.Duration) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= window {
		s.prune(now, window)
		s.lastSweep = now
	}
	rec, ok := s.records[key]
	if !ok || now.Sub(rec.LastFailureAt) > window {
		rec = &Record{Key: key}
		s.records[key] = rec
	}
	rec.FailureCount++
	rec.LastFailureAt = now
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) prune(now time.Time, window time.Duration) {
	for key, rec := range s.records {
		if now.Sub(rec.LastFailureAt) > window && !rec.IsLockedAt(now) {
			delete(s.records, key)
		}
	}
}

func (s *MemoryStore) Lock(_ context.Context, key string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		rec = &Record{Key: key}
		s.records[key] = rec
	}
	rec.LockedUntil = &until
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// RedisStore shares failure records across instances. Each record is a hash
// that expires with its window or lock, whichever ends later.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, lockoutKeyPrefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decodeRecord(key, fields)
}

func (s *RedisStore) RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*Record, error) {
	rk := lockoutKeyPrefix + key
	// The key's TTL is the window, so a lapsed window has already dropped it.
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, rk, "count", 1)
		pipe.HSet(ctx, rk, "last", now.UnixMilli())
		pipe.Expire(ctx, rk, window)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Record{Key: key, FailureCount: int(incr.Val()), LastFailureAt: now}, nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, until time.Time) error {
	rk := lockoutKeyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rk, "locked_until", until.UnixMilli())
		pipe.ExpireAt(ctx, rk, until)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, lockoutKeyPrefix+key).Err()
}

func decodeRecord(key string, fields map[string]string) (*Record, error) {
	rec := &Record{Key: key}
	if raw, ok := fields["count"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("corrupt lockout count")
		}
		rec.FailureCount = n
	}
	if raw, ok := fields["last"]; ok {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("corrupt lockout timestamp")
		}
		rec.LastFailureAt = time.UnixMilli(ms).UTC()
	}
	if raw, ok := fields["locked_until"]; ok {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("corrupt lockout timestamp")
		}
		until := time.UnixMilli(ms).UTC()
		rec.LockedUntil = &until
	}
	return rec, nil
}
