package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrKeyNotFound = errors.New("key not found")

// Keystore is the string key-value store sessions persist in.
type Keystore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisKeystore struct {
	client *redis.Client
	prefix string
}

func NewRedisKeystore(client *redis.Client, prefix string) *RedisKeystore {
	return &RedisKeystore{client: client, prefix: prefix}
}

func (k *RedisKeystore) Get(ctx context.Context, key string) (string, error) {
	v, err := k.client.Get(ctx, k.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return v, err
}

func (k *RedisKeystore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return k.client.Set(ctx, k.prefix+key, value, ttl).Err()
}

func (k *RedisKeystore) Delete(ctx context.Context, key string) error {
	return k.client.Del(ctx, k.prefix+key).Err()
}

// MemoryKeystore keeps entries in process. Used when Redis is unreachable
// and in tests.
type MemoryKeystore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryKeystore() *MemoryKeystore {
	return &MemoryKeystore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (k *MemoryKeystore) Get(ctx context.Context, key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && !k.now().Before(e.expiresAt) {
		delete(k.entries, key)
		return "", ErrKeyNotFound
	}
	return e.value, nil
}

func (k *MemoryKeystore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = k.now().Add(ttl)
	}
	k.entries[key] = e
	return nil
}

func (k *MemoryKeystore) Delete(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	delete(k.entries, key)
	return nil
}
