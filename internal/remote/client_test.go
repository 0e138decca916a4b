package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/eventboard/eventboard/internal/handler"
	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/repository"
	"github.com/eventboard/eventboard/internal/service"
	"github.com/eventboard/eventboard/internal/store"
)

// newStoreServer runs the real server stack over a temp file.
func newStoreServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	fs := store.NewFileStore(filepath.Join(dir, "events.json"), filepath.Join(dir, "backups"))
	svc := service.NewEventService(repository.NewEventRepository(fs))
	srv := httptest.NewServer(handler.NewRouter(handler.NewEventHandler(svc, time.UTC)))
	t.Cleanup(srv.Close)
	return srv
}

func sampleEvent(id string) model.Event {
	capacity := 30
	return model.Event{
		ID:          id,
		Title:       "Kosovo Hiking Adventure",
		Organizer:   "KosovoHiking",
		Date:        "2025-07-20",
		Time:        "08:00",
		Location:    "Rugova Mountains, Kosovo",
		Description: "A guided day hike",
		Price:       25,
		Capacity:    &capacity,
		Email:       "info@kosovohiking.com",
		Category:    model.CategorySports,
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv := newStoreServer(t)
	c := New(srv.URL, time.Second)
	ctx := context.Background()

	created, err := c.Create(ctx, sampleEvent("1748781045000"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "1748781045000" || created.CreatedAt == "" {
		t.Errorf("unexpected stored record: %+v", created)
	}

	got, err := c.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != created.Title || got.Capacity == nil || *got.Capacity != 30 {
		t.Errorf("Get returned %+v", got)
	}

	sports, err := c.List(ctx, model.Filter{Category: model.CategorySports})
	if err != nil || len(sports) != 1 {
		t.Fatalf("List sports = %d, %v", len(sports), err)
	}
	kids, err := c.List(ctx, model.Filter{Category: model.CategoryKids})
	if err != nil || len(kids) != 0 {
		t.Fatalf("List kids = %d, %v", len(kids), err)
	}

	removed, err := c.Delete(ctx, created.ID)
	if err != nil || removed != created.ID {
		t.Fatalf("Delete = %q, %v", removed, err)
	}

	if _, err := c.Delete(ctx, created.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
	if _, err := c.List(ctx, model.Filter{ID: created.ID}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("List by deleted id: expected ErrNotFound, got %v", err)
	}
}

func TestClientValidationError(t *testing.T) {
	srv := newStoreServer(t)
	c := New(srv.URL, time.Second)

	ev := sampleEvent("")
	ev.Location = ""
	_, err := c.Create(context.Background(), ev)

	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Kind != model.KindMissingField || ve.Field != "location" {
		t.Errorf("got %+v", ve)
	}
	if IsUnavailable(err) {
		t.Error("validation must not look like unavailability")
	}
}

func TestClientUnavailable(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer garbage.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"network", closed.URL},
		{"server error", failing.URL},
		{"malformed body", garbage.URL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.url, time.Second)
			_, err := c.List(context.Background(), model.Filter{})
			if !IsUnavailable(err) {
				t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
			}
			if errors.Is(err, model.ErrNotFound) || model.IsValidation(err) {
				t.Errorf("unavailability misclassified: %v", err)
			}
		})
	}
}
