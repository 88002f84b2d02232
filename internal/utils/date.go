package utils

import "time"

// WallClockMillis возвращает миллисекунды, сдвинутые на смещение таймзоны loc:
// если прочитать результат как UTC, получится локальное время в loc.
func WallClockMillis(t time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	_, offset := t.In(loc).Zone()
	return t.UnixMilli() + int64(offset)*1000
}
