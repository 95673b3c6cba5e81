package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryCache keeps rates in process memory.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rate    float64
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, code string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[code]
	if !ok {
		return 0, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, code)
		return 0, false, nil
	}
	return e.rate, true, nil
}

func (m *MemoryCache) Set(_ context.Context, code string, rate float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[code] = memoryEntry{rate: rate, expires: m.now().Add(ttl)}
	return nil
}

const redisKeyPrefix = "cotiza3d:fx:"

// RedisCache shares rates through Redis so every server instance reuses
// the same lookup.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, code string) (float64, bool, error) {
	raw, err := r.client.Get(ctx, redisKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: %w", code, err)
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached rate for %s: %w", code, err)
	}
	return rate, true, nil
}

func (r *RedisCache) Set(ctx context.Context, code string, rate float64, ttl time.Duration) error {
	value := strconv.FormatFloat(rate, 'g', -1, 64)
	if err := r.client.Set(ctx, redisKey(code), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", code, err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func redisKey(code string) string {
	return redisKeyPrefix + code
}
