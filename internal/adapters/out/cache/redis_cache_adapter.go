package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

const redisKeyPrefix = "meeting-rooms:"

// RedisCacheAdapter: общий кэш для нескольких экземпляров сервиса
type RedisCacheAdapter struct {
	client *redis.Client
	ttl    time.Duration
	logger out.LoggerPort
}

var _ out.RoomsCachePort = (*RedisCacheAdapter)(nil)

func NewRedisCacheAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (*RedisCacheAdapter, error) {
	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		logger.Error("cache.redis.parse_url_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("cache.redis.ping_failed", out.LogFields{
			"error": err.Error(),
		})
		_ = client.Close()
		return nil, err
	}

	return NewRedisCacheAdapterWithClient(client, cfg.Cache.TTL, logger), nil
}

func NewRedisCacheAdapterWithClient(client *redis.Client, ttl time.Duration, logger out.LoggerPort) *RedisCacheAdapter {
	return &RedisCacheAdapter{
		client: client,
		ttl:    ttl,
		logger: logger.WithModule("RedisCacheAdapter"),
	}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (c *RedisCacheAdapter) GetRooms(ctx context.Context, key string) ([]domain.Room, bool) {
	data, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache.redis.get_failed", out.LogFields{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var rooms []domain.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		c.logger.Warn("cache.redis.decode_failed", out.LogFields{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}

	return rooms, true
}

func (c *RedisCacheAdapter) StoreRooms(ctx context.Context, key string, rooms []domain.Room) {
	data, err := json.Marshal(rooms)
	if err != nil {
		c.logger.Warn("cache.redis.encode_failed", out.LogFields{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if err := c.client.Set(ctx, redisKey(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache.redis.store_failed", out.LogFields{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (c *RedisCacheAdapter) InvalidateRooms(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache.redis.scan_failed", out.LogFields{
			"error": err.Error(),
		})
		return
	}

	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache.redis.invalidate_failed", out.LogFields{
			"error": err.Error(),
		})
	}
}

func (c *RedisCacheAdapter) Close() error {
	return c.client.Close()
}
