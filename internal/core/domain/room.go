package domain

type RoomListRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawRoom: запись о переговорке в том виде, в котором её отдаёт каталог
type RawRoom struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type Room struct {
	RoomListName string        `json:"roomlist"`
	Name         string        `json:"name"`
	Alias        string        `json:"roomAlias"`
	Email        string        `json:"email"`
	Busy         bool          `json:"busy"`
	Appointments []Appointment `json:"appointments"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

func (r Room) HasError() bool {
	return r.ErrorMessage != ""
}
