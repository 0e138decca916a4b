package booking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/eventboard/eventboard/internal/cache"
	"github.com/eventboard/eventboard/internal/model"
)

type staticEvents map[string]model.Event

func (s staticEvents) Get(_ context.Context, id string) (model.Event, error) {
	if e, ok := s[id]; ok {
		return e, nil
	}
	return model.Event{}, model.ErrNotFound
}

func capacity(n int) *int { return &n }

func fixture(t *testing.T) (*Service, *cache.LocalCache) {
	t.Helper()
	events := staticEvents{
		"hike": {ID: "hike", Title: "Kosovo Hiking Adventure", Date: "2025-07-20", Price: 25, Capacity: capacity(30)},
		"kids": {ID: "kids", Title: "Kids Activity Day", Date: "2025-11-10", Price: 5},
		"full": {ID: "full", Title: "Sold out", Date: "2025-08-01", Capacity: capacity(0)},
	}
	c := cache.Open(cache.NewMemoryStorage(), cache.Options{})
	s := New(events, c)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return s, c
}

func validPayment() Payment {
	return Payment{
		CardNumber: "4111 1111 1111 1111",
		Expiry:     "12/27",
		CVV:        "123",
		CardName:   "Arta Krasniqi",
	}
}

func TestPaymentValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Payment)
		field string
	}{
		{"valid", func(*Payment) {}, ""},
		{"luhn failure", func(p *Payment) { p.CardNumber = "4111 1111 1111 1112" }, "CardNumber"},
		{"empty card", func(p *Payment) { p.CardNumber = "" }, "CardNumber"},
		{"bad month", func(p *Payment) { p.Expiry = "13/27" }, "Expiry"},
		{"bad expiry shape", func(p *Payment) { p.Expiry = "1227" }, "Expiry"},
		{"short cvv", func(p *Payment) { p.CVV = "12" }, "CVV"},
		{"letters in cvv", func(p *Payment) { p.CVV = "12a" }, "CVV"},
		{"blank name", func(p *Payment) { p.CardName = "   " }, "CardName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayment()
			tt.edit(&p)
			err := p.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected valid payment, got %v", err)
				}
				return
			}
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field || ve.Error() == "" {
				t.Errorf("got field %q message %q, want field %q", ve.Field, ve.Error(), tt.field)
			}
		})
	}
}

func TestReserve(t *testing.T) {
	s, c := fixture(t)
	ctx := context.Background()

	res, err := s.Reserve(ctx, "hike", validPayment())
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.ReservationID == "" || res.Amount != 25 || res.PaymentStatus != model.PaymentCompleted {
		t.Errorf("unexpected reservation %+v", res)
	}
	if res.ReservedAt != "2025-06-01T09:00:00Z" || res.EventTitle != "Kosovo Hiking Adventure" {
		t.Errorf("unexpected reservation %+v", res)
	}
	if got := c.Reservations(); len(got) != 1 {
		t.Fatalf("stored reservations = %d", len(got))
	}

	if _, err := s.Reserve(ctx, "hike", validPayment()); !errors.Is(err, ErrAlreadyReserved) {
		t.Errorf("second reserve: expected ErrAlreadyReserved, got %v", err)
	}
	// A zero capacity arrives only from records decoded off the wire.
	if _, err := s.Reserve(ctx, "full", validPayment()); !errors.Is(err, ErrNoSpotsAvailable) {
		t.Errorf("full event: expected ErrNoSpotsAvailable, got %v", err)
	}
	if _, err := s.Reserve(ctx, "nope", validPayment()); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown event: expected ErrNotFound, got %v", err)
	}

	bad := validPayment()
	bad.CVV = "1"
	if _, err := s.Reserve(ctx, "kids", bad); !model.IsValidation(err) {
		t.Errorf("bad payment: expected validation error, got %v", err)
	}
	if got := c.Reservations(); len(got) != 1 {
		t.Errorf("failed reservations must not be stored, have %d", len(got))
	}
}

func TestReserveZeroCapacityFromWire(t *testing.T) {
	var ev model.Event
	if err := json.Unmarshal([]byte(`{"id":"gig","title":"Closed gig","date":"2025-09-01","capacity":0}`), &ev); err != nil {
		t.Fatal(err)
	}
	c := cache.Open(cache.NewMemoryStorage(), cache.Options{})
	defer c.Close()
	s := New(staticEvents{"gig": ev}, c)

	if _, err := s.Reserve(context.Background(), "gig", validPayment()); !errors.Is(err, ErrNoSpotsAvailable) {
		t.Fatalf("expected ErrNoSpotsAvailable, got %v", err)
	}
	if got := c.Reservations(); len(got) != 0 {
		t.Errorf("no reservation should be stored, have %d", len(got))
	}
}

func TestReservationsSortedAndCancel(t *testing.T) {
	s, c := fixture(t)
	ctx := context.Background()

	c.SetReservations([]model.Reservation{
		{ReservationID: "r-kids", EventID: "kids"},
		{ReservationID: "r-gone", EventID: "deleted"},
		{ReservationID: "r-hike", EventID: "hike"},
	})

	got := s.Reservations(ctx)
	order := []string{"r-hike", "r-kids", "r-gone"}
	for i, id := range order {
		if got[i].ReservationID != id {
			t.Fatalf("order = %+v, want %v", got, order)
		}
	}

	if s.CancelReservation("missing") {
		t.Error("cancelling an unknown reservation should report false")
	}
	if !s.CancelReservation("r-kids") {
		t.Error("cancel r-kids should report true")
	}
	if n := len(c.Reservations()); n != 2 {
		t.Errorf("after cancel: %d reservations", n)
	}
}

func TestFavorites(t *testing.T) {
	s, _ := fixture(t)

	kids := model.Event{ID: "kids", Date: "2025-11-10"}
	hike := model.Event{ID: "hike", Date: "2025-07-20"}

	if !s.AddFavorite(kids) || !s.AddFavorite(hike) {
		t.Fatal("first adds should succeed")
	}
	if s.AddFavorite(kids) {
		t.Error("adding the same id twice should be a no-op")
	}
	if !s.IsFavorite("kids") || s.IsFavorite("other") {
		t.Error("IsFavorite mismatch")
	}

	favs := s.Favorites()
	if len(favs) != 2 || favs[0].ID != "hike" || favs[1].ID != "kids" {
		t.Errorf("Favorites = %+v", favs)
	}

	if !s.RemoveFavorite("kids") || s.RemoveFavorite("kids") {
		t.Error("RemoveFavorite should succeed once")
	}
	if len(s.Favorites()) != 1 {
		t.Errorf("expected 1 favorite left")
	}
}
