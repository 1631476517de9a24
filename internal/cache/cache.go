// Package cache remembers extracted fields by document digest so identical
// uploads skip text extraction and entity recognition.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-parser/internal/types"
)

const keyPrefix = "resume:fields:"

type Cache interface {
	Get(ctx context.Context, digest string) (*types.Fields, bool, error)
	Set(ctx context.Context, digest string, f *types.Fields) error
	Close() error
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string) (*types.Fields, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, *types.Fields) error         { return nil }
func (Nop) Close() error                                             { return nil }

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects using a redis:// URL and pings the server.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func Key(digest string) string {
	return keyPrefix + digest
}

func (c *RedisCache) Get(ctx context.Context, digest string) (*types.Fields, bool, error) {
	raw, err := c.client.Get(ctx, Key(digest)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var f types.Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false, fmt.Errorf("decode cached fields: %w", err)
	}
	if f.Skills == nil {
		f.Skills = []string{}
	}
	return &f, true, nil
}

func (c *RedisCache) Set(ctx context.Context, digest string, f *types.Fields) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := c.client.Set(ctx, Key(digest), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
