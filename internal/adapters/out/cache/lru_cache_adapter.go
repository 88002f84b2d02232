package cache

import (
	"context"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

type LRUCacheAdapter struct {
	cache  *expirable.LRU[string, []domain.Room]
	logger out.LoggerPort
}

var _ out.RoomsCachePort = (*LRUCacheAdapter)(nil)

func NewLRUCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*LRUCacheAdapter, error) {
	size := cfg.Cache.Size
	if size <= 0 {
		size = 1
	}

	return &LRUCacheAdapter{
		cache:  expirable.NewLRU[string, []domain.Room](size, nil, cfg.Cache.TTL),
		logger: logger.WithModule("LRUCacheAdapter"),
	}, nil
}

func (c *LRUCacheAdapter) GetRooms(ctx context.Context, key string) ([]domain.Room, bool) {
	rooms, exists := c.cache.Get(key)
	if !exists {
		c.logger.Debug("cache.rooms.get.miss", out.LogFields{
			"key": key,
		})
		return nil, false
	}

	c.logger.Debug("cache.rooms.get.hit", out.LogFields{
		"key":        key,
		"roomsCount": len(rooms),
	})
	return cloneRooms(rooms), true
}

func (c *LRUCacheAdapter) StoreRooms(ctx context.Context, key string, rooms []domain.Room) {
	c.logger.Debug("cache.rooms.store", out.LogFields{
		"key":        key,
		"roomsCount": len(rooms),
	})

	c.cache.Add(key, cloneRooms(rooms))
}

func (c *LRUCacheAdapter) InvalidateRooms(ctx context.Context) {
	c.cache.Purge()
}
