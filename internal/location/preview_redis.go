// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/climbmap/internal/config"
	"github.com/tomtom215/climbmap/internal/metrics"
)

// RedisPreviewStore keeps previews in Redis so several service instances
// behind a load balancer can serve them.
type RedisPreviewStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisPreviewStore connects to the configured Redis and verifies it with PING.
func NewRedisPreviewStore(cfg *config.PreviewConfig) (*RedisPreviewStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return newRedisPreviewStore(client, cfg.KeyPrefix, ttl), nil
}

func newRedisPreviewStore(client *redis.Client, prefix string, ttl time.Duration) *RedisPreviewStore {
	client.AddHook(errorHook{})
	return &RedisPreviewStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisPreviewStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store preview: %w", err)
	}
	metrics.PreviewsStored.WithLabelValues(StoreRedis).Inc()
	return nil
}

func (s *RedisPreviewStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheAccess("preview", false)
		return nil, ErrPreviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load preview: %w", err)
	}
	metrics.RecordCacheAccess("preview", true)
	return data, nil
}

func (s *RedisPreviewStore) Release(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("release preview: %w", err)
	}
	if n > 0 {
		metrics.PreviewsStored.WithLabelValues(StoreRedis).Dec()
	}
	return nil
}

func (s *RedisPreviewStore) Close() error {
	return s.client.Close()
}

// errorHook counts failed Redis commands.
type errorHook struct{}

func (errorHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.PreviewStoreErrors.WithLabelValues(StoreRedis, cmd.Name()).Inc()
		}
		return err
	}
}

func (errorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.PreviewStoreErrors.WithLabelValues(StoreRedis, "pipeline").Inc()
		}
		return err
	}
}
