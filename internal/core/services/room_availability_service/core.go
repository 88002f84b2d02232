package room_availability_service

import (
	"context"
	"fmt"
	"time"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/in"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

type Settings struct {
	Domain                  string
	MaxDays                 int
	MaxRoomLists            int
	MaxRooms                int
	MaxItems                int
	RoomsConcurrency        int
	AppointmentsConcurrency int
	RequestTimeout          time.Duration
	Location                *time.Location
}

func NewSettings(cfg *config.Config) Settings {
	return Settings{
		Domain:                  cfg.Domain,
		MaxDays:                 cfg.Search.MaxDays,
		MaxRoomLists:            cfg.Search.MaxRoomLists,
		MaxRooms:                cfg.Search.MaxRooms,
		MaxItems:                cfg.Search.MaxItems,
		RoomsConcurrency:        cfg.Pipeline.RoomsConcurrency,
		AppointmentsConcurrency: cfg.Pipeline.AppointmentsConcurrency,
		RequestTimeout:          cfg.Pipeline.RequestTimeout,
		Location:                cfg.Location(),
	}
}

// Ключ кэша зависит от всех параметров, влияющих на результат
func (s Settings) cacheKey() string {
	return fmt.Sprintf("rooms:%s:%d:%d:%d:%d", s.Domain, s.MaxDays, s.MaxRoomLists, s.MaxRooms, s.MaxItems)
}

type RoomAvailabilityService struct {
	directoryPort out.DirectoryPort
	exclusionPort out.ExclusionPort
	cachePort     out.RoomsCachePort
	metricsPort   out.MetricsPort
	logger        out.LoggerPort
	settings      Settings
	now           func() time.Time
}

var _ in.RoomAvailabilityUseCase = (*RoomAvailabilityService)(nil)

func NewRoomAvailabilityService(
	directoryPort out.DirectoryPort,
	exclusionPort out.ExclusionPort,
	cachePort out.RoomsCachePort,
	metricsPort out.MetricsPort,
	logger out.LoggerPort,
	settings Settings,
) *RoomAvailabilityService {
	if settings.RoomsConcurrency <= 0 {
		settings.RoomsConcurrency = 1
	}
	if settings.AppointmentsConcurrency <= 0 {
		settings.AppointmentsConcurrency = 1
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}

	return &RoomAvailabilityService{
		directoryPort: directoryPort,
		exclusionPort: exclusionPort,
		cachePort:     cachePort,
		metricsPort:   metricsPort,
		logger:        logger.WithModule("RoomAvailabilityService"),
		settings:      settings,
		now:           time.Now,
	}
}

func (s *RoomAvailabilityService) ListRooms(ctx context.Context, opts in.ListRoomsOptions) ([]domain.Room, []domain.DebugInfo, error) {
	key := s.settings.cacheKey()

	// Проверяем кэш только если он включен
	if s.cachePort != nil && !opts.Refresh {
		if rooms, exists := s.cachePort.GetRooms(ctx, key); exists {
			s.logger.Debug("rooms.list.cache.hit", out.LogFields{
				"roomsCount": len(rooms),
			})
			return rooms, nil, nil
		}
		s.logger.Debug("rooms.list.cache.miss", out.LogFields{})
	}

	rooms, debugInfo, err := s.Run(ctx)
	if err != nil {
		return nil, debugInfo, err
	}

	if s.cachePort != nil && ctx.Err() == nil {
		s.cachePort.StoreRooms(ctx, key, rooms)
	}

	return rooms, debugInfo, nil
}

func (s *RoomAvailabilityService) GetRoom(ctx context.Context, alias string) (*domain.Room, error) {
	rooms, _, err := s.ListRooms(ctx, in.ListRoomsOptions{})
	if err != nil {
		return nil, err
	}

	for i := range rooms {
		if rooms[i].Alias == alias {
			room := rooms[i]
			return &room, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, alias)
}

func (s *RoomAvailabilityService) InvalidateRooms(ctx context.Context) error {
	if s.cachePort == nil {
		return nil
	}

	s.cachePort.InvalidateRooms(ctx)
	s.logger.Info("rooms.cache.invalidated", out.LogFields{})

	return nil
}

func (s *RoomAvailabilityService) isExcluded(ids ...string) bool {
	if s.exclusionPort == nil {
		return false
	}
	for _, id := range ids {
		if id != "" && s.exclusionPort.IsExcluded(id) {
			return true
		}
	}
	return false
}

func (s *RoomAvailabilityService) observeStage(stage out.PipelineStage, d time.Duration) {
	if s.metricsPort != nil {
		s.metricsPort.ObserveStage(stage, d)
	}
}

func (s *RoomAvailabilityService) branchFailed(stage out.PipelineStage) {
	if s.metricsPort != nil {
		s.metricsPort.IncBranchFailure(stage)
	}
}

func (s *RoomAvailabilityService) pipelineFinished(result string) {
	if s.metricsPort != nil {
		s.metricsPort.IncPipelineRun(result)
	}
}
