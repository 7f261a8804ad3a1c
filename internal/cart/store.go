package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps one cart per session key. Load returns an empty cart when the
// key is unknown or expired.
type Store interface {
	Load(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, c *Cart) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	cart    *Cart
	expires time.Time
}

// MemoryStore holds carts in process memory. Carts are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return New(), nil
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, key)
		return New(), nil
	}
	return e.cart.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{cart: c.Clone(), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Sweep drops expired carts and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

const redisKeyPrefix = "cart:"

// RedisStore keeps carts as JSON with a sliding TTL so they survive restarts.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Cart, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
