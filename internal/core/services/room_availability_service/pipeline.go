package room_availability_service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
	"github.com/suchimauz/meeting-rooms-availability/internal/utils"
)

var tracer = otel.Tracer("github.com/suchimauz/meeting-rooms-availability/room_availability_service")

// Run собирает список переговорок в три этапа:
// списки -> переговорки -> встречи. Ошибкой завершается только первый этап,
// ошибки отдельных веток попадают в данные.
func (s *RoomAvailabilityService) Run(ctx context.Context) ([]domain.Room, []domain.DebugInfo, error) {
	runID := uuid.New()
	logger := s.logger.WithFields(out.LogFields{
		"runId": runID.String(),
	})
	debug := &pipelineDebug{}

	ctx, span := tracer.Start(ctx, "rooms.pipeline",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("run.id", runID.String())),
	)
	defer span.End()

	now := s.now()
	window := domain.NewTimeWindow(now, s.settings.MaxDays)

	s.setState(logger, domain.PipelineStateListingRoomLists)
	roomListsDebug := domain.StartStage("rooms.pipeline.room_lists.fetch")
	roomLists, err := s.listRoomLists(ctx)
	stageFailed := 0
	if err != nil {
		stageFailed = 1
	}
	s.finishStage(debug, &roomListsDebug, out.PipelineStageRoomLists, 1, len(roomLists), stageFailed)
	if err != nil {
		s.setState(logger, domain.PipelineStateFailed)
		logger.Error("rooms.pipeline.room_lists.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "room lists fetch failed")
		s.pipelineFinished("failed")
		return nil, debug.Data(), fmt.Errorf("rooms.pipeline.room_lists.fetch_failed: %w", err)
	}

	s.setState(logger, domain.PipelineStateExpandingRooms)
	roomsDebug := domain.StartStage("rooms.pipeline.rooms.expand")
	rooms, failedLists := s.expandRooms(ctx, logger, roomLists)
	s.finishStage(debug, &roomsDebug, out.PipelineStageRooms, len(roomLists), len(rooms), failedLists)

	if err := ctx.Err(); err != nil {
		return nil, debug.Data(), s.cancelRun(logger, span, err)
	}

	s.setState(logger, domain.PipelineStateFillingAppointments)
	appointmentsDebug := domain.StartStage("rooms.pipeline.appointments.fill")
	s.fillAppointments(ctx, logger, rooms, window)
	failedRooms := countFailed(rooms)
	s.finishStage(debug, &appointmentsDebug, out.PipelineStageAppointments, len(rooms), len(rooms)-failedRooms, failedRooms)

	// Ошибки веток после отмены вызывающим относятся к отмене, а не к каталогу
	if err := ctx.Err(); err != nil {
		return nil, debug.Data(), s.cancelRun(logger, span, err)
	}

	RoomSlice(rooms).sortByName()

	s.setState(logger, domain.PipelineStateDone)
	span.SetAttributes(
		attribute.Int("rooms.lists", len(roomLists)),
		attribute.Int("rooms.count", len(rooms)),
	)
	s.pipelineFinished("success")

	return rooms, debug.Data(), nil
}

// finishStage закрывает замер этапа: debug-ответ и метрика длительности
func (s *RoomAvailabilityService) finishStage(debug *pipelineDebug, info *domain.DebugInfo, stage out.PipelineStage, input, output, failed int) {
	elapsed := info.Finish(input, output, failed)
	debug.AddDebugInfo(*info)
	s.observeStage(stage, elapsed)
}

func countFailed(rooms []domain.Room) int {
	failed := 0
	for i := range rooms {
		if rooms[i].HasError() {
			failed++
		}
	}
	return failed
}

func (s *RoomAvailabilityService) cancelRun(logger out.LoggerPort, span trace.Span, err error) error {
	s.setState(logger, domain.PipelineStateFailed)
	logger.Warn("rooms.pipeline.cancelled", out.LogFields{
		"error": err.Error(),
	})
	span.RecordError(err)
	span.SetStatus(codes.Error, "run cancelled")
	s.pipelineFinished("cancelled")

	return fmt.Errorf("rooms.pipeline.cancelled: %w", err)
}

func (s *RoomAvailabilityService) setState(logger out.LoggerPort, state domain.PipelineState) {
	logger.Debug("rooms.pipeline.state", out.LogFields{
		"state": state,
	})
}

// Ограничение на число одновременных запросов к каталогу, своё для каждого этапа
func newGroup(limit int) *errgroup.Group {
	g := &errgroup.Group{}
	g.SetLimit(limit)
	return g
}

func (s *RoomAvailabilityService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.settings.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.settings.RequestTimeout)
}

func (s *RoomAvailabilityService) listRoomLists(ctx context.Context) ([]domain.RoomListRef, error) {
	reqCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.directoryPort.ListRoomLists(reqCtx)
}

// expandRooms: этап 2, по запросу на каждый список.
// Упавший список даёт ноль переговорок и учитывается во втором результате.
func (s *RoomAvailabilityService) expandRooms(ctx context.Context, logger out.LoggerPort, roomLists []domain.RoomListRef) ([]domain.Room, int) {
	var mu sync.Mutex
	rooms := make([]domain.Room, 0)
	failedLists := 0

	g := newGroup(s.settings.RoomsConcurrency)
	for _, roomList := range roomLists {
		g.Go(func() error {
			reqCtx, cancel := s.withTimeout(ctx)
			defer cancel()

			raws, err := s.directoryPort.ListRooms(reqCtx, roomList)
			if err != nil {
				logger.Warn("rooms.pipeline.room_list.fetch_failed", out.LogFields{
					"roomList": roomList.Name,
					"error":    err.Error(),
				})
				s.branchFailed(out.PipelineStageRooms)

				mu.Lock()
				failedLists++
				mu.Unlock()

				return nil
			}

			expanded := s.expandRoomList(logger, roomList, raws)

			mu.Lock()
			rooms = append(rooms, expanded...)
			mu.Unlock()

			return nil
		})
	}
	_ = g.Wait()

	return rooms, failedLists
}

func (s *RoomAvailabilityService) expandRoomList(logger out.LoggerPort, roomList domain.RoomListRef, raws []domain.RawRoom) []domain.Room {
	rooms := make([]domain.Room, 0, len(raws))

	for _, raw := range raws {
		if s.isExcluded(raw.Address, raw.Name) {
			logger.Debug("rooms.pipeline.room.excluded", out.LogFields{
				"room": raw.Address,
			})
			continue
		}

		room, err := NormalizeRoom(raw, roomList.Name, s.settings.Domain)
		if err != nil {
			// Комнату не теряем: отдаём её с ошибкой и без расписания
			logger.Warn("rooms.pipeline.room.normalize_failed", out.LogFields{
				"roomList": roomList.Name,
				"room":     raw.Name,
				"error":    err.Error(),
			})
			room.ErrorMessage = err.Error()
			s.branchFailed(out.PipelineStageRooms)
		} else if s.isExcluded(room.Email) {
			continue
		}

		rooms = append(rooms, room)
	}

	return rooms
}

// fillAppointments: этап 3. Каждая горутина пишет только в свой элемент rooms.
func (s *RoomAvailabilityService) fillAppointments(ctx context.Context, logger out.LoggerPort, rooms []domain.Room, window domain.TimeWindow) {
	nowLocal := utils.WallClockMillis(window.From, s.settings.Location)

	g := newGroup(s.settings.AppointmentsConcurrency)
	for i := range rooms {
		if rooms[i].HasError() {
			continue
		}

		room := &rooms[i]
		g.Go(func() error {
			appointments, busy, err := s.fetchAppointments(ctx, room.Email, window, nowLocal)
			if err != nil {
				logger.Warn("rooms.pipeline.appointments.fetch_failed", out.LogFields{
					"room":  room.Email,
					"error": err.Error(),
				})
				s.branchFailed(out.PipelineStageAppointments)

				room.Appointments = []domain.Appointment{}
				room.Busy = false
				room.ErrorMessage = errorMessage(err)
				return nil
			}

			room.Appointments = appointments
			room.Busy = busy
			return nil
		})
	}
	_ = g.Wait()
}

func (s *RoomAvailabilityService) fetchAppointments(ctx context.Context, email string, window domain.TimeWindow, nowLocal int64) ([]domain.Appointment, bool, error) {
	reqCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raws, err := s.directoryPort.ListAppointments(reqCtx, email, window, s.settings.MaxItems)
	if err != nil {
		return nil, false, err
	}

	return projectAppointments(raws, s.settings.Location, nowLocal)
}

func errorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "calendar request timed out"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "calendar request failed"
}
