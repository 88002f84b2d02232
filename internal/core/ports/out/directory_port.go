package out

import (
	"context"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
)

// DirectoryPort: каталог переговорок и их календарей (Graph или EWS)
type DirectoryPort interface {
	ListRoomLists(ctx context.Context) ([]domain.RoomListRef, error)
	ListRooms(ctx context.Context, roomList domain.RoomListRef) ([]domain.RawRoom, error)
	ListAppointments(ctx context.Context, roomEmail string, window domain.TimeWindow, maxItems int) ([]domain.RawAppointment, error)
}
