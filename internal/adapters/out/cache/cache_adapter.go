package cache

import (
	"context"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

// NewCacheAdapter выбирает реализацию кэша по конфигу:
// Redis, если задан CACHE_REDIS_URL, иначе LRU в памяти процесса.
func NewCacheAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (out.RoomsCachePort, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	if cfg.Cache.RedisURL != "" {
		adapter, err := NewRedisCacheAdapter(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	}

	adapter, err := NewLRUCacheAdapter(cfg, logger)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

// Копия, чтобы вызывающий не мог изменить закэшированные данные
func cloneRooms(rooms []domain.Room) []domain.Room {
	if rooms == nil {
		return nil
	}

	cloned := make([]domain.Room, len(rooms))
	for i, room := range rooms {
		cloned[i] = room
		cloned[i].Appointments = append([]domain.Appointment{}, room.Appointments...)
	}
	return cloned
}
