package domain

import "time"

const (
	SensitivityNormal = "Normal"
	PrivateSubject    = "Private"
)

// RawTimestamp: время из ответа каталога.
// Пустой TimeZone означает, что Value содержит смещение (RFC3339).
type RawTimestamp struct {
	Value    string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type RawAppointment struct {
	Subject       string       `json:"subject"`
	OrganizerName string       `json:"organizerName"`
	Start         RawTimestamp `json:"start"`
	End           RawTimestamp `json:"end"`
	Sensitivity   string       `json:"sensitivity"`
}

// Appointment: встреча в переговорке. Start/End в миллисекундах
// локального времени.
type Appointment struct {
	Subject   string `json:"subject"`
	Organizer string `json:"organizer"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Private   bool   `json:"private"`
}

// TimeWindow: полуинтервал [From, To)
type TimeWindow struct {
	From time.Time
	To   time.Time
}

func NewTimeWindow(now time.Time, days int) TimeWindow {
	return TimeWindow{
		From: now,
		To:   now.AddDate(0, 0, days),
	}
}
