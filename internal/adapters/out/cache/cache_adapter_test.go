package cache

import (
	"context"
	"testing"
	"time"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(string, out.LogFields) {}
func (nopLogger) Info(string, out.LogFields) {}
func (nopLogger) Warn(string, out.LogFields) {}
func (nopLogger) Error(string, out.LogFields) {}
func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort { return l }

func lruConfig(ttl time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.Cache.Enabled = true
	cfg.Cache.Size = 4
	cfg.Cache.TTL = ttl
	return cfg
}

func sampleRooms() []domain.Room {
	return []domain.Room{
		{
			Name:  "Large Room",
			Email: "a@corp.local",
			Appointments: []domain.Appointment{
				{Subject: "Planning", Start: 1, End: 2},
			},
		},
	}
}

func TestNewCacheAdapter_Disabled(t *testing.T) {
	cfg := &config.Config{}

	adapter, err := NewCacheAdapter(context.Background(), cfg, nopLogger{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter != nil {
		t.Fatalf("expected nil adapter, got %T", adapter)
	}
}

func TestNewCacheAdapter_DefaultsToLRU(t *testing.T) {
	adapter, err := NewCacheAdapter(context.Background(), lruConfig(time.Minute), nopLogger{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := adapter.(*LRUCacheAdapter); !ok {
		t.Fatalf("expected LRU adapter, got %T", adapter)
	}
}

func TestLRUCacheAdapter_StoreGetInvalidate(t *testing.T) {
	ctx := context.Background()
	adapter, err := NewLRUCacheAdapter(lruConfig(time.Minute), nopLogger{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := adapter.GetRooms(ctx, "k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	adapter.StoreRooms(ctx, "k", sampleRooms())

	rooms, ok := adapter.GetRooms(ctx, "k")
	if !ok || len(rooms) != 1 || rooms[0].Email != "a@corp.local" {
		t.Fatalf("expected hit, got %v %+v", ok, rooms)
	}

	adapter.InvalidateRooms(ctx)
	if _, ok := adapter.GetRooms(ctx, "k"); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestLRUCacheAdapter_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	adapter, _ := NewLRUCacheAdapter(lruConfig(time.Minute), nopLogger{})

	original := sampleRooms()
	adapter.StoreRooms(ctx, "k", original)
	original[0].Appointments[0].Subject = "mutated"

	rooms, _ := adapter.GetRooms(ctx, "k")
	rooms[0].Name = "mutated"

	again, _ := adapter.GetRooms(ctx, "k")
	if again[0].Name != "Large Room" || again[0].Appointments[0].Subject != "Planning" {
		t.Fatalf("cache entry was mutated: %+v", again[0])
	}
}

func TestLRUCacheAdapter_Expires(t *testing.T) {
	ctx := context.Background()
	adapter, _ := NewLRUCacheAdapter(lruConfig(10*time.Millisecond), nopLogger{})

	adapter.StoreRooms(ctx, "k", sampleRooms())
	time.Sleep(50 * time.Millisecond)

	if _, ok := adapter.GetRooms(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestRedisKey(t *testing.T) {
	if got := redisKey("rooms:corp.local:10:10:10:6"); got != "meeting-rooms:rooms:corp.local:10:10:10:6" {
		t.Fatalf("unexpected key: %s", got)
	}
}
