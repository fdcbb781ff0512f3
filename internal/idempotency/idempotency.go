// Package idempotency remembers the outcome of requests carrying an
// Idempotency-Key so that retried submissions are answered from the first
// result instead of being executed twice.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrInProgress is returned by Begin while another request holds the key.
var ErrInProgress = errors.New("request with this idempotency key is in progress")

// Record is a stored response.
type Record struct {
	StatusCode int
	Body       []byte
}

// Store reserves keys and keeps their responses.
type Store interface {
	// Begin reserves key. It returns the stored record when the key has
	// already completed, ErrInProgress when it is reserved, and (nil, nil)
	// when the caller now owns it.
	Begin(ctx context.Context, key string) (*Record, error)
	// Complete stores the response for an owned key.
	Complete(ctx context.Context, key string, rec Record) error
	// Release drops an owned key without a response so it can be retried.
	Release(ctx context.Context, key string) error
}

const pendingMarker = "pending"

// RedisStore keeps keys in Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. Keys expire after ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, prefix: "storefront:idempotency:", ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Begin(ctx context.Context, key string) (*Record, error) {
	k := s.prefix + key
	ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return nil, nil
	}

	fields, err := s.client.HGetAll(ctx, k+":result").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency record: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrInProgress
	}
	var code int
	if _, err := fmt.Sscanf(fields["status"], "%d", &code); err != nil {
		return nil, fmt.Errorf("corrupt idempotency record for %s: %w", key, err)
	}
	return &Record{StatusCode: code, Body: []byte(fields["body"])}, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, rec Record) error {
	k := s.prefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k+":result", "status", rec.StatusCode, "body", string(rec.Body))
		pipe.Expire(ctx, k+":result", s.ttl)
		pipe.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for single-node deployments and tests.
// Entries expire after ttl like their Redis counterparts.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	rec     *Record // nil while in progress
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Begin(ctx context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}

	e, ok := s.entries[key]
	if !ok {
		s.entries[key] = memoryEntry{expires: now.Add(s.ttl)}
		return nil, nil
	}
	if e.rec == nil {
		return nil, ErrInProgress
	}
	out := *e.rec
	return &out, nil
}

func (s *MemoryStore) Complete(ctx context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{rec: &rec, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of live and not yet swept keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
