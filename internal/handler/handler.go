// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventboard/eventboard/internal/calendar"
	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/service"
)

// EventHandler holds all HTTP handlers for the events API.
type EventHandler struct {
	svc *service.EventService
	loc *time.Location
}

// NewEventHandler constructs an EventHandler. loc is the zone event
// dates are read in for the calendar feed.
func NewEventHandler(svc *service.EventService, loc *time.Location) *EventHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EventHandler{svc: svc, loc: loc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	return json.NewDecoder(r.Body).Decode(dst)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListEvents handles GET /events?category=<c>&id=<id>
// With id it returns that single event (id wins over category); otherwise
// a JSON array, narrowed to category when given.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		event, err := h.svc.GetEvent(r.Context(), id)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Event not found")
				return
			}
			logging.Error("get event failed", err, "id", id)
			writeError(w, http.StatusInternalServerError, "Failed to load events")
			return
		}
		writeJSON(w, http.StatusOK, event)
		return
	}

	events, err := h.svc.ListEvents(r.Context(), q.Get("category"))
	if err != nil {
		logging.Error("list events failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to load events")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// CreateEvent handles POST /events
// Validates, normalizes and appends the event to the shared collection.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		logging.Error("create event failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to save event")
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateEventResponse{
		Success: true,
		Message: "Event created successfully",
		Event:   *event,
	})
}

// DeleteEvent handles DELETE /events?id=<id>
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingID):
			writeError(w, http.StatusBadRequest, "Event ID is required")
		case errors.Is(err, model.ErrNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
		default:
			logging.Error("delete event failed", err, "id", id)
			writeError(w, http.StatusInternalServerError, "Failed to delete event")
		}
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteEventResponse{
		Success: true,
		Message: "Event deleted successfully",
		EventID: id,
	})
}

// Calendar handles GET /events/calendar.ics?category=<c>
// Returns the (optionally filtered) collection as an iCalendar feed.
func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		logging.Error("calendar export failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to load events")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(calendar.Export(events, h.loc, time.Now()))); err != nil {
		logging.Error("failed to write calendar", err)
	}
}

// MethodNotAllowed answers any verb an endpoint does not serve.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
