package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

const graphScope = "https://graph.microsoft.com/.default"

type GraphAdapter struct {
	client       *http.Client
	baseURL      string
	maxRoomLists int
	maxRooms     int
	logger       out.LoggerPort
}

var _ out.DirectoryPort = (*GraphAdapter)(nil)

// NewGraphAdapter создаёт клиент с токеном по client credentials.
// Обновление токена берёт на себя oauth2.
func NewGraphAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) *GraphAdapter {
	credentials := clientcredentials.Config{
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		TokenURL:     tokenURL(cfg.Graph.Authority, cfg.Graph.TenantID),
		Scopes:       []string{graphScope},
	}

	baseClient := &http.Client{Timeout: cfg.Pipeline.RequestTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, baseClient)

	return NewGraphAdapterWithClient(
		credentials.Client(ctx),
		cfg.Graph.BaseURL,
		cfg.Search.MaxRoomLists,
		cfg.Search.MaxRooms,
		logger,
	)
}

func NewGraphAdapterWithClient(client *http.Client, baseURL string, maxRoomLists, maxRooms int, logger out.LoggerPort) *GraphAdapter {
	return &GraphAdapter{
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxRoomLists: maxRoomLists,
		maxRooms:     maxRooms,
		logger:       logger,
	}
}

func tokenURL(authority, tenantID string) string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(authority, "/"), tenantID)
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type graphRoomList struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type graphRoom struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type graphEvent struct {
	Subject     string `json:"subject"`
	Sensitivity string `json:"sensitivity"`
	Organizer   struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"organizer"`
	Start domain.RawTimestamp `json:"start"`
	End   domain.RawTimestamp `json:"end"`
}

type graphCollection[T any] struct {
	Value []T `json:"value"`
}

func (a *GraphAdapter) ListRoomLists(ctx context.Context) ([]domain.RoomListRef, error) {
	a.logger.Info("graph.room_lists.fetch", out.LogFields{})

	query := nurl.Values{}
	query.Set("$top", strconv.Itoa(a.maxRoomLists))

	var response graphCollection[graphRoomList]
	if err := a.get(ctx, "/places/microsoft.graph.roomlist", query, &response); err != nil {
		a.logger.Error("graph.room_lists.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	roomLists := make([]domain.RoomListRef, 0, len(response.Value))
	for _, item := range response.Value {
		// Комнаты списка запрашиваются по его адресу
		roomLists = append(roomLists, domain.RoomListRef{
			ID:   item.EmailAddress,
			Name: item.DisplayName,
		})
	}

	a.logger.Debug("graph.room_lists.fetch_success", out.LogFields{
		"count": len(roomLists),
	})

	return roomLists, nil
}

func (a *GraphAdapter) ListRooms(ctx context.Context, roomList domain.RoomListRef) ([]domain.RawRoom, error) {
	query := nurl.Values{}
	query.Set("$top", strconv.Itoa(a.maxRooms))

	path := fmt.Sprintf("/places/%s/microsoft.graph.roomlist/rooms", nurl.PathEscape(roomList.ID))

	var response graphCollection[graphRoom]
	if err := a.get(ctx, path, query, &response); err != nil {
		a.logger.Error("graph.rooms.fetch_failed", out.LogFields{
			"roomList": roomList.ID,
			"error":    err.Error(),
		})
		return nil, err
	}

	rooms := make([]domain.RawRoom, 0, len(response.Value))
	for _, item := range response.Value {
		rooms = append(rooms, domain.RawRoom{
			Address: item.EmailAddress,
			Name:    item.DisplayName,
		})
	}

	return rooms, nil
}

func (a *GraphAdapter) ListAppointments(ctx context.Context, roomEmail string, window domain.TimeWindow, maxItems int) ([]domain.RawAppointment, error) {
	query := nurl.Values{}
	query.Set("startDateTime", window.From.UTC().Format(time.RFC3339))
	query.Set("endDateTime", window.To.UTC().Format(time.RFC3339))
	query.Set("$top", strconv.Itoa(maxItems))
	query.Set("$orderby", "start/dateTime")
	query.Set("$select", "subject,organizer,start,end,sensitivity")

	path := fmt.Sprintf("/users/%s/calendar/calendarView", nurl.PathEscape(roomEmail))

	var response graphCollection[graphEvent]
	if err := a.get(ctx, path, query, &response); err != nil {
		a.logger.Error("graph.calendar_view.fetch_failed", out.LogFields{
			"room":  roomEmail,
			"error": err.Error(),
		})
		return nil, err
	}

	appointments := make([]domain.RawAppointment, 0, len(response.Value))
	for _, event := range response.Value {
		appointments = append(appointments, domain.RawAppointment{
			Subject:       event.Subject,
			OrganizerName: event.Organizer.EmailAddress.Name,
			Start:         event.Start,
			End:           event.End,
			Sensitivity:   event.Sensitivity,
		})
	}

	return appointments, nil
}

func (a *GraphAdapter) get(ctx context.Context, path string, query nurl.Values, dst interface{}) error {
	url := a.baseURL + path
	if len(query) > 0 {
		url += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	// Время встреч приходит в UTC, перевод в локальное делает сервис
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeGraphError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("graph: decode response: %w", err)
	}

	return nil
}

func decodeGraphError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload graphError
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("graph: %d %s: %s", resp.StatusCode, payload.Error.Code, payload.Error.Message)
	}

	return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}
