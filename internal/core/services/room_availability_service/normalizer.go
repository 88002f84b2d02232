package room_availability_service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
)

var ErrMalformedAddress = errors.New("malformed room address")

// NormalizeRoom приводит запись каталога к domain.Room.
// При ошибке адреса комната всё равно заполнена (email исходный),
// чтобы её можно было вернуть с ErrorMessage.
func NormalizeRoom(raw domain.RawRoom, roomListName, corporateDomain string) (domain.Room, error) {
	room := domain.Room{
		RoomListName: roomListName,
		Name:         raw.Name,
		Alias:        RoomAlias(raw.Name),
		Email:        raw.Address,
		Appointments: []domain.Appointment{},
	}

	email, err := RewriteEmailDomain(raw.Address, corporateDomain)
	if err != nil {
		return room, err
	}
	room.Email = email

	return room, nil
}

// RewriteEmailDomain заменяет домен адреса на корпоративный.
// Замена безусловная, поэтому повторный вызов ничего не меняет.
func RewriteEmailDomain(address, corporateDomain string) (string, error) {
	at := strings.Index(address, "@")
	if at <= 0 {
		return "", fmt.Errorf("%w: %q", ErrMalformedAddress, address)
	}

	if corporateDomain == "" {
		return address, nil
	}

	return address[:at] + "@" + corporateDomain, nil
}

var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Снимает диакритику: "é" -> "e"
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RoomAlias: "Large  Room" -> "large-room", "Зал 2" -> "zal-2".
// В alias остаются только ASCII-символы, прочие отбрасываются.
func RoomAlias(name string) string {
	var latin strings.Builder
	for _, r := range strings.ToLower(name) {
		if translit, ok := cyrillicToLatin[r]; ok {
			latin.WriteString(translit)
			continue
		}
		latin.WriteRune(r)
	}

	folded, _, err := transform.String(stripMarks, latin.String())
	if err != nil {
		folded = latin.String()
	}

	var b strings.Builder
	b.Grow(len(folded))

	inSpace := false
	for _, r := range folded {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		inSpace = false
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
