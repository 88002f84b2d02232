package ews

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

const (
	responseClassError = "Error"
	exchangeVersion    = "Exchange2016"
)

// EWSAdapter ходит в Exchange Web Services по SOAP с basic auth
type EWSAdapter struct {
	client       *http.Client
	url          string
	username     string
	password     string
	maxRoomLists int
	maxRooms     int
	logger       out.LoggerPort
}

var _ out.DirectoryPort = (*EWSAdapter)(nil)

func NewEWSAdapter(cfg *config.Config, logger out.LoggerPort) *EWSAdapter {
	return &EWSAdapter{
		client:       &http.Client{Timeout: cfg.Pipeline.RequestTimeout},
		url:          cfg.EWS.URL,
		username:     cfg.EWS.Username,
		password:     cfg.EWS.Password,
		maxRoomLists: cfg.Search.MaxRoomLists,
		maxRooms:     cfg.Search.MaxRooms,
		logger:       logger,
	}
}

type ewsAddress struct {
	Name         string `xml:"Name"`
	EmailAddress string `xml:"EmailAddress"`
}

type ewsResponseStatus struct {
	ResponseClass string `xml:"ResponseClass,attr"`
	MessageText   string `xml:"MessageText"`
	ResponseCode  string `xml:"ResponseCode"`
}

func (s ewsResponseStatus) err() error {
	if s.ResponseClass != responseClassError {
		return nil
	}
	if s.MessageText != "" {
		return fmt.Errorf("ews: %s: %s", s.ResponseCode, s.MessageText)
	}
	return fmt.Errorf("ews: %s", s.ResponseCode)
}

type getRoomListsEnvelope struct {
	Response struct {
		ewsResponseStatus
		RoomLists []ewsAddress `xml:"RoomLists>Address"`
	} `xml:"Body>GetRoomListsResponse"`
}

type getRoomsEnvelope struct {
	Response struct {
		ewsResponseStatus
		Rooms []ewsAddress `xml:"Rooms>Room>Id"`
	} `xml:"Body>GetRoomsResponse"`
}

type ewsCalendarItem struct {
	Subject     string `xml:"Subject"`
	Sensitivity string `xml:"Sensitivity"`
	Start       string `xml:"Start"`
	End         string `xml:"End"`
	Organizer   string `xml:"Organizer>Mailbox>Name"`
}

type findItemEnvelope struct {
	Messages []struct {
		ewsResponseStatus
		Items []ewsCalendarItem `xml:"RootFolder>Items>CalendarItem"`
	} `xml:"Body>FindItemResponse>ResponseMessages>FindItemResponseMessage"`
}

type soapFault struct {
	FaultString string `xml:"Body>Fault>faultstring"`
}

func (a *EWSAdapter) ListRoomLists(ctx context.Context) ([]domain.RoomListRef, error) {
	a.logger.Info("ews.room_lists.fetch", out.LogFields{})

	var envelope getRoomListsEnvelope
	if err := a.call(ctx, "GetRoomLists", getRoomListsBody, &envelope); err != nil {
		a.logger.Error("ews.room_lists.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}
	if err := envelope.Response.err(); err != nil {
		a.logger.Error("ews.room_lists.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	roomLists := make([]domain.RoomListRef, 0, len(envelope.Response.RoomLists))
	for _, address := range envelope.Response.RoomLists {
		if len(roomLists) == a.maxRoomLists {
			break
		}
		roomLists = append(roomLists, domain.RoomListRef{
			ID:   address.EmailAddress,
			Name: address.Name,
		})
	}

	a.logger.Debug("ews.room_lists.fetch_success", out.LogFields{
		"count": len(roomLists),
	})

	return roomLists, nil
}

func (a *EWSAdapter) ListRooms(ctx context.Context, roomList domain.RoomListRef) ([]domain.RawRoom, error) {
	body := fmt.Sprintf(getRoomsBody, escape(roomList.ID))

	var envelope getRoomsEnvelope
	if err := a.call(ctx, "GetRooms", body, &envelope); err != nil {
		return nil, err
	}
	if err := envelope.Response.err(); err != nil {
		return nil, err
	}

	// GetRooms не умеет ограничивать выдачу, режем сами
	rooms := make([]domain.RawRoom, 0, len(envelope.Response.Rooms))
	for _, address := range envelope.Response.Rooms {
		if len(rooms) == a.maxRooms {
			break
		}
		rooms = append(rooms, domain.RawRoom{
			Address: address.EmailAddress,
			Name:    address.Name,
		})
	}

	return rooms, nil
}

func (a *EWSAdapter) ListAppointments(ctx context.Context, roomEmail string, window domain.TimeWindow, maxItems int) ([]domain.RawAppointment, error) {
	body := fmt.Sprintf(findItemBody,
		maxItems,
		window.From.UTC().Format(time.RFC3339),
		window.To.UTC().Format(time.RFC3339),
		escape(roomEmail),
	)

	var envelope findItemEnvelope
	if err := a.call(ctx, "FindItem", body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Messages) == 0 {
		return nil, fmt.Errorf("ews: empty FindItem response")
	}

	message := envelope.Messages[0]
	if err := message.err(); err != nil {
		return nil, err
	}

	appointments := make([]domain.RawAppointment, 0, len(message.Items))
	for _, item := range message.Items {
		appointments = append(appointments, domain.RawAppointment{
			Subject:       item.Subject,
			OrganizerName: item.Organizer,
			Start:         domain.RawTimestamp{Value: item.Start},
			End:           domain.RawTimestamp{Value: item.End},
			Sensitivity:   item.Sensitivity,
		})
	}

	return appointments, nil
}

func (a *EWSAdapter) call(ctx context.Context, action, body string, dst interface{}) error {
	payload := fmt.Sprintf(envelopeTemplate, exchangeVersion, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, strings.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://schemas.microsoft.com/exchange/services/2006/messages/"+action)
	req.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var fault soapFault
		if xml.Unmarshal(data, &fault) == nil && fault.FaultString != "" {
			return fmt.Errorf("ews: %d: %s", resp.StatusCode, fault.FaultString)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := xml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("ews: decode %s response: %w", action, err)
	}

	return nil
}

func escape(value string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(value))
	return buf.String()
}
