package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/repository"
	"github.com/eventboard/eventboard/internal/service"
	"github.com/eventboard/eventboard/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	fs := store.NewFileStore(filepath.Join(dir, "events.json"), filepath.Join(dir, "backups"))
	svc := service.NewEventService(repository.NewEventRepository(fs))
	return NewRouter(NewEventHandler(svc, time.UTC))
}

func validPayload() map[string]any {
	return map[string]any{
		"title":       "Kids Activity Day",
		"organizer":   "RIT Kosovo",
		"date":        "2025-11-10",
		"time":        "10:00",
		"location":    "Prishtina, Kosovo",
		"description": "Games and crafts",
		"price":       5,
		"capacity":    50,
		"email":       "info@rit.edu",
		"category":    "kids",
	}
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func createEvent(t *testing.T, h http.Handler, payload map[string]any) model.Event {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/events", payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp model.CreateEventResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !resp.Success || resp.Message != "Event created successfully" {
		t.Fatalf("unexpected create response: %+v", resp)
	}
	return resp.Event
}

func TestListEventsEmpty(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/events", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("expected empty array, got %s", got)
	}
}

func TestCreateThenGetByID(t *testing.T) {
	h := newTestRouter(t)
	created := createEvent(t, h, validPayload())

	if created.ID == "" || created.CreatedAt == "" {
		t.Fatalf("server should assign id and createdAt: %+v", created)
	}

	rr := do(t, h, http.MethodGet, "/events?id="+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got model.Event
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Kids Activity Day" || got.Price != 5 || got.Capacity == nil || *got.Capacity != 50 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreateKeepsClientID(t *testing.T) {
	h := newTestRouter(t)
	payload := validPayload()
	payload["id"] = "1748781045000"

	created := createEvent(t, h, payload)
	if created.ID != "1748781045000" {
		t.Errorf("client id should be kept verbatim, got %q", created.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	h := newTestRouter(t)

	missing := validPayload()
	delete(missing, "location")
	badEmail := validPayload()
	badEmail["email"] = "not-an-email"

	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing field", missing, "Missing required field: location"},
		{"invalid email", badEmail, "Invalid email address"},
		{"malformed json", "{not json", "Invalid JSON payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/events", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if got := decodeError(t, rr); got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListByCategory(t *testing.T) {
	h := newTestRouter(t)
	createEvent(t, h, validPayload())

	sports := validPayload()
	sports["title"] = "Kosovo Hiking Adventure"
	sports["category"] = "sports"
	createEvent(t, h, sports)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?category=kids", 1},
		{"?category=sports", 1},
		{"?category=music", 0},
		{"?category=unknown", 0},
	}

	for _, tt := range tests {
		rr := do(t, h, http.MethodGet, "/events"+tt.query, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", tt.query, rr.Code)
		}
		var events []model.Event
		if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
			t.Fatalf("%q: decode: %v", tt.query, err)
		}
		if len(events) != tt.want {
			t.Errorf("%q: expected %d events, got %d", tt.query, tt.want, len(events))
		}
	}
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/events?id=nope&category=kids", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "Event not found" {
		t.Errorf("error = %q", got)
	}
}

func TestDeleteEvent(t *testing.T) {
	h := newTestRouter(t)
	created := createEvent(t, h, validPayload())

	rr := do(t, h, http.MethodDelete, "/events?id="+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp model.DeleteEventResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.EventID != created.ID || resp.Message != "Event deleted successfully" {
		t.Errorf("unexpected delete response: %+v", resp)
	}

	// Deleting again reports not found rather than failing.
	rr = do(t, h, http.MethodDelete, "/events?id="+created.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/events?id="+created.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rr.Code)
	}
}

func TestDeleteWithoutID(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodDelete, "/events", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "Event ID is required" {
		t.Errorf("error = %q", got)
	}
}

func TestPreflightAndCORS(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodOptions, "/events", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("pre-flight body should be empty, got %q", rr.Body.String())
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}

	rr = do(t, h, http.MethodGet, "/events", nil)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("GET Allow-Origin = %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		rr := do(t, h, method, "/events", nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, rr.Code)
		}
		if got := decodeError(t, rr); got != "Method not allowed" {
			t.Errorf("%s: error = %q", method, got)
		}
	}
}

func TestCalendarFeed(t *testing.T) {
	h := newTestRouter(t)
	created := createEvent(t, h, validPayload())

	rr := do(t, h, http.MethodGet, "/events/calendar.ics?category=kids", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "UID:"+created.ID+"@eventboard") {
		t.Errorf("feed missing created event:\n%s", rr.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	rr := httptest.NewRecorder()
	HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}
