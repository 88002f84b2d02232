package domain

import (
	"testing"
	"time"
)

func TestDebugInfo_Finish(t *testing.T) {
	info := StartStage("rooms.pipeline.rooms.expand")
	time.Sleep(2 * time.Millisecond)

	elapsed := info.Finish(3, 7, 1)

	if elapsed < 2*time.Millisecond || info.Timing != elapsed.Milliseconds() {
		t.Fatalf("unexpected timing %d for elapsed %s", info.Timing, elapsed)
	}
	if info.Input != 3 || info.Output != 7 || info.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", info)
	}
}
