package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	applog "expensedash/internal/log"
)

const redisOpTimeout = 2 * time.Second

// NewRedisClient connects to REDIS_URL. Bare host:port values are accepted.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// RedisCache stores gob-encoded values under a key prefix with a TTL. Gob
// keeps the concrete types held in interface fields, so a cached value reads
// back exactly as it was stored.
// Redis errors are logged and reported as cache misses.
type RedisCache[T any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a cache over client. Keys are namespaced by prefix.
func NewRedisCache[T any](client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache[T]) key(k string) string {
	return c.prefix + k
}

// Get retrieves a value from the cache
func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logError("get", key, err)
		}
		return zero, false
	}

	v, err := decodeValue[T](raw)
	if err != nil {
		c.logError("decode", key, err)
		return zero, false
	}
	return v, true
}

// Set stores a value in the cache
func (c *RedisCache[T]) Set(key string, data T) {
	raw, err := encodeValue(data)
	if err != nil {
		c.logError("encode", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		c.logError("set", key, err)
	}
}

// Delete removes a key from the cache
func (c *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logError("delete", key, err)
	}
}

// Clear removes every key under the prefix.
func (c *RedisCache[T]) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.scan(ctx)
	if err != nil {
		c.logError("scan", c.prefix+"*", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logError("clear", c.prefix+"*", err)
	}
}

// Size returns the number of keys under the prefix, or 0 when Redis is unreachable.
func (c *RedisCache[T]) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.scan(ctx)
	if err != nil {
		c.logError("scan", c.prefix+"*", err)
		return 0
	}
	return len(keys)
}

func (c *RedisCache[T]) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func (c *RedisCache[T]) logError(op, key string, err error) {
	slog.Warn("Redis cache operation failed",
		applog.FieldComponent, applog.ComponentCache,
		applog.FieldOperation, op,
		applog.FieldCacheKey, key,
		applog.FieldError, err)
}

func encodeValue[T any](v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValue[T any](raw []byte) (T, error) {
	var v T
	err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&v)
	return v, err
}
