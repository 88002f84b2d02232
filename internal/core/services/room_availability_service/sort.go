package room_availability_service

import (
	"sort"
	"strings"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
)

type RoomSlice []domain.Room

func (s RoomSlice) Len() int      { return len(s) }
func (s RoomSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Сравнение без учёта регистра
func (s RoomSlice) Less(i, j int) bool {
	return strings.ToLower(s[i].Name) < strings.ToLower(s[j].Name)
}

func (s RoomSlice) sortByName() {
	sort.Stable(s)
}
