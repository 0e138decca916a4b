package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface of the shared event store.
func NewRouter(h *EventHandler) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)                    // permissive CORS, answers pre-flight

	r.MethodNotAllowed(MethodNotAllowed)

	// Health
	r.Get("/health", HealthCheck)

	// One endpoint, dispatched on method.
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Delete("/", h.DeleteEvent)
		r.Get("/calendar.ics", h.Calendar)
	})

	return r
}
