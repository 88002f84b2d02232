package json_types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

const naiveLayout = "2006-01-02T15:04:05"

// ParseTimestamp разбирает время из ответа каталога.
// EWS отдаёт RFC3339 со смещением, Graph присылает время без смещения и отдельно
// таймзону. Если таймзона не указана и смещения нет, используется fallback.
func ParseTimestamp(value, zone string, fallback *time.Location) (time.Time, error) {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}

	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}

	location := fallback
	if zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: unknown time zone %q", ErrInvalidTimestamp, zone)
		}
		location = loc
	}
	if location == nil {
		location = time.UTC
	}

	// Дробная часть секунд (у Graph семь знаков) разбирается и без неё в шаблоне
	parsed, err := time.ParseInLocation(naiveLayout, value, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}

	return parsed, nil
}
