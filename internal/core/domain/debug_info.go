package domain

import "time"

// DebugInfo: замер одного этапа сборки. Input: сколько запросов ушло в каталог,
// Output: сколько элементов этап отдал дальше, Failed: сколько веток упало.
type DebugInfo struct {
	Event  string `json:"event"`
	Timing int64  `json:"timing"`
	Input  int    `json:"input"`
	Output int    `json:"output"`
	Failed int    `json:"failed,omitempty"`

	startedAt time.Time
}

func StartStage(event string) DebugInfo {
	return DebugInfo{Event: event, startedAt: time.Now()}
}

// Finish фиксирует длительность и счётчики этапа и возвращает длительность
func (d *DebugInfo) Finish(input, output, failed int) time.Duration {
	elapsed := time.Since(d.startedAt)
	d.Timing = elapsed.Milliseconds()
	d.Input = input
	d.Output = output
	d.Failed = failed
	return elapsed
}
