package room_availability_service

import (
	"sync"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
)

type pipelineDebug struct {
	mu   sync.Mutex
	data []domain.DebugInfo
}

func (d *pipelineDebug) AddDebugInfo(info domain.DebugInfo) {
	d.mu.Lock()
	d.data = append(d.data, info)
	d.mu.Unlock()
}

func (d *pipelineDebug) Data() []domain.DebugInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.DebugInfo, len(d.data))
	copy(out, d.data)
	return out
}
