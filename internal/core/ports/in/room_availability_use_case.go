package in

import (
	"context"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
)

type ListRoomsOptions struct {
	// Игнорировать кэш и пересобрать список
	Refresh bool
}

type RoomAvailabilityUseCase interface {
	// Список переговорок с занятостью, отсортированный по названию
	ListRooms(ctx context.Context, opts ListRoomsOptions) ([]domain.Room, []domain.DebugInfo, error)

	// Поиск переговорки по alias
	GetRoom(ctx context.Context, alias string) (*domain.Room, error)

	// Сброс кэша
	InvalidateRooms(ctx context.Context) error
}
