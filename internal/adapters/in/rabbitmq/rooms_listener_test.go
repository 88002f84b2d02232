package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/in"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(string, out.LogFields) {}
func (nopLogger) Info(string, out.LogFields) {}
func (nopLogger) Warn(string, out.LogFields) {}
func (nopLogger) Error(string, out.LogFields) {}
func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort { return l }

type useCaseStub struct {
	invalidated int
	refreshed   int
	err         error
}

func (s *useCaseStub) ListRooms(_ context.Context, opts in.ListRoomsOptions) ([]domain.Room, []domain.DebugInfo, error) {
	if opts.Refresh {
		s.refreshed++
	}
	return nil, nil, s.err
}

func (s *useCaseStub) GetRoom(context.Context, string) (*domain.Room, error) {
	return nil, domain.ErrRoomNotFound
}

func (s *useCaseStub) InvalidateRooms(context.Context) error {
	s.invalidated++
	return s.err
}

type ackRecorder struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func newTestListener(useCase in.RoomAvailabilityUseCase) *RoomsListener {
	return newRoomsListener(useCase, &config.Config{}, nopLogger{}, nil, nil)
}

func delivery(routingKey string, ack *ackRecorder) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, RoutingKey: routingKey}
}

func TestParseRoutingKey(t *testing.T) {
	tests := []struct {
		routingKey string
		want       RoomsMessageRoutingKey
		wantErr    bool
	}{
		{
			routingKey: "directory.meeting-rooms-svc.rooms.invalidate",
			want: RoomsMessageRoutingKey{
				Source:       "directory",
				Receiver:     "meeting-rooms-svc",
				ResourceType: RoomsResource,
				Action:       RoomsActionInvalidate,
			},
		},
		{
			routingKey: "exchange.meeting-rooms-svc.rooms.refresh",
			want: RoomsMessageRoutingKey{
				Source:       "exchange",
				Receiver:     "meeting-rooms-svc",
				ResourceType: RoomsResource,
				Action:       RoomsActionRefresh,
			},
		},
		{routingKey: "directory.meeting-rooms-svc.rooms", wantErr: true},
		{routingKey: "directory.meeting-rooms-svc.rooms.invalidate.extra", wantErr: true},
		{routingKey: "directory.meeting-rooms-svc.appointment.invalidate", wantErr: true},
		{routingKey: "directory.meeting-rooms-svc.rooms.store", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseRoutingKey(tt.routingKey)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRoutingKey(%q): expected error", tt.routingKey)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRoutingKey(%q): unexpected error %v", tt.routingKey, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRoutingKey(%q) = %+v, want %+v", tt.routingKey, got, tt.want)
		}
	}
}

func TestRoomsListener_InvalidateIsAcked(t *testing.T) {
	useCase := &useCaseStub{}
	ack := &ackRecorder{}

	newTestListener(useCase).handleDelivery(context.Background(), delivery("directory.meeting-rooms-svc.rooms.invalidate", ack))

	if useCase.invalidated != 1 || useCase.refreshed != 0 {
		t.Fatalf("unexpected calls: %+v", useCase)
	}
	if !ack.acked || ack.nacked {
		t.Fatalf("expected ack, got %+v", ack)
	}
}

func TestRoomsListener_RefreshRebuilds(t *testing.T) {
	useCase := &useCaseStub{}
	ack := &ackRecorder{}

	newTestListener(useCase).handleDelivery(context.Background(), delivery("directory.meeting-rooms-svc.rooms.refresh", ack))

	if useCase.refreshed != 1 {
		t.Fatalf("expected refresh run, got %+v", useCase)
	}
	if !ack.acked {
		t.Fatalf("expected ack, got %+v", ack)
	}
}

func TestRoomsListener_BadRoutingKeyIsDropped(t *testing.T) {
	useCase := &useCaseStub{}
	ack := &ackRecorder{}

	newTestListener(useCase).handleDelivery(context.Background(), delivery("garbage", ack))

	if useCase.invalidated != 0 || useCase.refreshed != 0 {
		t.Fatalf("use case must not be called: %+v", useCase)
	}
	if !ack.nacked || ack.requeued {
		t.Fatalf("expected nack without requeue, got %+v", ack)
	}
}

func TestRoomsListener_InvalidateFailureIsRequeued(t *testing.T) {
	useCase := &useCaseStub{err: errors.New("redis unavailable")}
	ack := &ackRecorder{}

	newTestListener(useCase).handleDelivery(context.Background(), delivery("directory.meeting-rooms-svc.rooms.invalidate", ack))

	if !ack.nacked || !ack.requeued {
		t.Fatalf("expected nack with requeue, got %+v", ack)
	}
}

func TestRoomsListener_RefreshFailureIsDropped(t *testing.T) {
	useCase := &useCaseStub{err: errors.New("rooms.pipeline.room_lists.fetch_failed: directory unavailable")}
	ack := &ackRecorder{}

	newTestListener(useCase).handleDelivery(context.Background(), delivery("directory.meeting-rooms-svc.rooms.refresh", ack))

	if useCase.refreshed != 1 {
		t.Fatalf("expected one refresh attempt, got %d", useCase.refreshed)
	}
	if !ack.nacked || ack.requeued {
		t.Fatalf("expected nack without requeue, got %+v", ack)
	}
}

func TestRoomsListener_ConsumeStopsOnClosedChannel(t *testing.T) {
	useCase := &useCaseStub{}
	msgs := make(chan amqp.Delivery, 2)
	first, second := &ackRecorder{}, &ackRecorder{}
	msgs <- delivery("directory.meeting-rooms-svc.rooms.invalidate", first)
	msgs <- delivery("directory.meeting-rooms-svc.rooms.invalidate", second)
	close(msgs)

	done := make(chan struct{})
	go func() {
		newTestListener(useCase).consume(context.Background(), msgs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume did not return after channel close")
	}

	if useCase.invalidated != 2 || !first.acked || !second.acked {
		t.Fatalf("expected both messages processed, got %+v", useCase)
	}
}

func TestRoomsListener_StopOnNilListener(t *testing.T) {
	var listener *RoomsListener
	if err := listener.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRoomsListener_Disabled(t *testing.T) {
	listener, err := NewRoomsListener(&useCaseStub{}, &config.Config{}, nopLogger{})
	if err != nil || listener != nil {
		t.Fatalf("expected nil listener when disabled, got %v, %v", listener, err)
	}
}
