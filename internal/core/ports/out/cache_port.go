package out

import (
	"context"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
)

type RoomsCachePort interface {
	GetRooms(ctx context.Context, key string) ([]domain.Room, bool)
	StoreRooms(ctx context.Context, key string, rooms []domain.Room)
	InvalidateRooms(ctx context.Context)
}
