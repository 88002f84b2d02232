package room_availability_service

import (
	"fmt"
	"strings"
	"time"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/json_types"
	"github.com/suchimauz/meeting-rooms-availability/internal/utils"
)

func IsPrivate(sensitivity string) bool {
	return !strings.EqualFold(strings.TrimSpace(sensitivity), domain.SensitivityNormal)
}

// NormalizeTimestamp переводит время каталога в миллисекунды локального времени loc
func NormalizeTimestamp(raw domain.RawTimestamp, loc *time.Location) (int64, error) {
	parsed, err := json_types.ParseTimestamp(raw.Value, raw.TimeZone, loc)
	if err != nil {
		return 0, err
	}
	return utils.WallClockMillis(parsed, loc), nil
}

func ProjectAppointment(raw domain.RawAppointment, loc *time.Location) (domain.Appointment, error) {
	start, err := NormalizeTimestamp(raw.Start, loc)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("appointment start: %w", err)
	}

	end, err := NormalizeTimestamp(raw.End, loc)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("appointment end: %w", err)
	}

	private := IsPrivate(raw.Sensitivity)
	subject := raw.Subject
	if private {
		subject = domain.PrivateSubject
	}

	return domain.Appointment{
		Subject:   subject,
		Organizer: raw.OrganizerName,
		Start:     start,
		End:       end,
		Private:   private,
	}, nil
}

// IsBusy: идёт ли встреча сейчас, [start, end)
func IsBusy(appointment domain.Appointment, nowLocal int64) bool {
	return appointment.Start <= nowLocal && nowLocal < appointment.End
}

// projectAppointments сохраняет порядок ответа каталога.
// Занятость считается только по первой встрече.
func projectAppointments(raws []domain.RawAppointment, loc *time.Location, nowLocal int64) ([]domain.Appointment, bool, error) {
	appointments := make([]domain.Appointment, 0, len(raws))
	for _, raw := range raws {
		appointment, err := ProjectAppointment(raw, loc)
		if err != nil {
			return nil, false, err
		}
		appointments = append(appointments, appointment)
	}

	busy := len(appointments) > 0 && IsBusy(appointments[0], nowLocal)

	return appointments, busy, nil
}
