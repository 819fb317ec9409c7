// Package redisstore implements fiber.Storage on Redis so sessions and
// rate-limit counters survive restarts and are shared between instances.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 3 * time.Second

var _ fiber.Storage = (*Storage)(nil)

// Storage is a key/value store with per-key expiry.
type Storage struct {
	client *redis.Client
	prefix string
}

// Options configures a Storage.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces keys, so sessions and limiter counters can share a database.
	Prefix string
}

// New connects to Redis and pings it.
func New(ctx context.Context, opts Options) (*Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

// WithPrefix returns a Storage sharing the same client under another namespace.
func (s *Storage) WithPrefix(prefix string) *Storage {
	return &Storage{client: s.client, prefix: prefix}
}

func (s *Storage) key(k string) string {
	return s.prefix + k
}

// Get returns nil, nil for a missing key.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores val under key. A zero exp keeps the key forever.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), val, exp).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Reset removes every key under the prefix.
func (s *Storage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	keys, err := s.client.Keys(ctx, s.prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("redis keys %s*: %w", s.prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client. Storages made with WithPrefix share it.
func (s *Storage) Close() error {
	return s.client.Close()
}
