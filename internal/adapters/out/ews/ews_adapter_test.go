package ews

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(string, out.LogFields) {}
func (nopLogger) Info(string, out.LogFields) {}
func (nopLogger) Warn(string, out.LogFields) {}
func (nopLogger) Error(string, out.LogFields) {}
func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort { return l }

const soapPrefix = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"
  xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages"
  xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"><s:Body>`

const soapSuffix = `</s:Body></s:Envelope>`

type soapRequest struct {
	action string
	body   string
	user   string
}

func newTestAdapter(t *testing.T, respond func(req soapRequest) (int, string)) (*EWSAdapter, *[]soapRequest) {
	t.Helper()

	requests := &[]soapRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, _, _ := r.BasicAuth()
		req := soapRequest{
			action: r.Header.Get("SOAPAction"),
			body:   string(body),
			user:   user,
		}
		*requests = append(*requests, req)

		status, payload := respond(req)
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(soapPrefix + payload + soapSuffix))
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.EWS.URL = server.URL + "/EWS/Exchange.asmx"
	cfg.EWS.Username = "svc-rooms"
	cfg.EWS.Password = "secret"
	cfg.Search.MaxRoomLists = 2
	cfg.Search.MaxRooms = 2
	cfg.Pipeline.RequestTimeout = time.Second

	return NewEWSAdapter(cfg, nopLogger{}), requests
}

func TestEWSAdapter_ListRoomLists(t *testing.T) {
	adapter, requests := newTestAdapter(t, func(req soapRequest) (int, string) {
		return http.StatusOK, `<m:GetRoomListsResponse ResponseClass="Success">
			<m:ResponseCode>NoError</m:ResponseCode>
			<m:RoomLists>
				<t:Address><t:Name>Building A</t:Name><t:EmailAddress>bldg-a@x.com</t:EmailAddress></t:Address>
				<t:Address><t:Name>Building B</t:Name><t:EmailAddress>bldg-b@x.com</t:EmailAddress></t:Address>
				<t:Address><t:Name>Building C</t:Name><t:EmailAddress>bldg-c@x.com</t:EmailAddress></t:Address>
			</m:RoomLists>
		</m:GetRoomListsResponse>`
	})

	lists, err := adapter.ListRoomLists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected lists to be capped at 2, got %d", len(lists))
	}
	if lists[0].ID != "bldg-a@x.com" || lists[0].Name != "Building A" {
		t.Fatalf("unexpected list: %+v", lists[0])
	}

	req := (*requests)[0]
	if !strings.HasSuffix(req.action, "/GetRoomLists") || req.user != "svc-rooms" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !strings.Contains(req.body, `Version="Exchange2016"`) {
		t.Fatalf("expected server version header, got %s", req.body)
	}
}

func TestEWSAdapter_ListRooms(t *testing.T) {
	adapter, requests := newTestAdapter(t, func(req soapRequest) (int, string) {
		return http.StatusOK, `<m:GetRoomsResponse ResponseClass="Success">
			<m:ResponseCode>NoError</m:ResponseCode>
			<m:Rooms>
				<t:Room><t:Id><t:Name>Large Room</t:Name><t:EmailAddress>a@x.com</t:EmailAddress></t:Id></t:Room>
			</m:Rooms>
		</m:GetRoomsResponse>`
	})

	rooms, err := adapter.ListRooms(context.Background(), domain.RoomListRef{ID: "bldg&a@x.com", Name: "Building A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Address != "a@x.com" || rooms[0].Name != "Large Room" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
	if !strings.Contains((*requests)[0].body, "<t:EmailAddress>bldg&amp;a@x.com</t:EmailAddress>") {
		t.Fatalf("expected escaped room list address, got %s", (*requests)[0].body)
	}
}

func TestEWSAdapter_ListAppointments(t *testing.T) {
	from := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	window := domain.TimeWindow{From: from, To: from.AddDate(0, 0, 10)}

	adapter, requests := newTestAdapter(t, func(req soapRequest) (int, string) {
		return http.StatusOK, `<m:FindItemResponse><m:ResponseMessages>
			<m:FindItemResponseMessage ResponseClass="Success">
				<m:ResponseCode>NoError</m:ResponseCode>
				<m:RootFolder TotalItemsInView="1" IncludesLastItemInRange="true"><t:Items>
					<t:CalendarItem>
						<t:Subject>Planning</t:Subject>
						<t:Sensitivity>Private</t:Sensitivity>
						<t:Start>2026-10-19T09:00:00Z</t:Start>
						<t:End>2026-10-19T11:00:00Z</t:End>
						<t:Organizer><t:Mailbox><t:Name>Alex</t:Name></t:Mailbox></t:Organizer>
					</t:CalendarItem>
				</t:Items></m:RootFolder>
			</m:FindItemResponseMessage>
		</m:ResponseMessages></m:FindItemResponse>`
	})

	appointments, err := adapter.ListAppointments(context.Background(), "a@corp.local", window, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.RawAppointment{
		Subject:       "Planning",
		OrganizerName: "Alex",
		Start:         domain.RawTimestamp{Value: "2026-10-19T09:00:00Z"},
		End:           domain.RawTimestamp{Value: "2026-10-19T11:00:00Z"},
		Sensitivity:   "Private",
	}
	if len(appointments) != 1 || appointments[0] != want {
		t.Fatalf("unexpected appointments: %+v", appointments)
	}

	body := (*requests)[0].body
	for _, fragment := range []string{
		`MaxEntriesReturned="6"`,
		`StartDate="2026-10-19T10:00:00Z"`,
		`EndDate="2026-10-29T10:00:00Z"`,
		`<t:EmailAddress>a@corp.local</t:EmailAddress>`,
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected request to contain %q, got %s", fragment, body)
		}
	}
}

func TestEWSAdapter_ResponseErrorCarriesMessage(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(req soapRequest) (int, string) {
		return http.StatusOK, `<m:FindItemResponse><m:ResponseMessages>
			<m:FindItemResponseMessage ResponseClass="Error">
				<m:MessageText>The specified object was not found in the store.</m:MessageText>
				<m:ResponseCode>ErrorItemNotFound</m:ResponseCode>
			</m:FindItemResponseMessage>
		</m:ResponseMessages></m:FindItemResponse>`
	})

	_, err := adapter.ListAppointments(context.Background(), "a@corp.local", domain.TimeWindow{}, 6)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "ErrorItemNotFound") || !strings.Contains(err.Error(), "not found in the store") {
		t.Fatalf("expected code and message in error, got %v", err)
	}
}

func TestEWSAdapter_SoapFault(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(req soapRequest) (int, string) {
		return http.StatusInternalServerError, `<s:Fault><faultcode>s:Client</faultcode><faultstring>The request failed schema validation.</faultstring></s:Fault>`
	})

	_, err := adapter.ListRoomLists(context.Background())
	if err == nil || !strings.Contains(err.Error(), "schema validation") {
		t.Fatalf("expected fault string in error, got %v", err)
	}
}
