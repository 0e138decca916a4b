// Package booking keeps a client's favorites and mock reservations.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/query"
)

var (
	ErrAlreadyReserved  = errors.New("you have already reserved a spot for this event")
	ErrNoSpotsAvailable = errors.New("no spots available")
)

// Events resolves event ids. *reconcile.Reconciler implements it.
type Events interface {
	Get(ctx context.Context, id string) (model.Event, error)
}

// Lists persists the favorites and reservations lists.
// *cache.LocalCache implements it.
type Lists interface {
	Favorites() []model.Event
	SetFavorites([]model.Event)
	Reservations() []model.Reservation
	SetReservations([]model.Reservation)
}

// Service manages one client's favorites and reservations.
type Service struct {
	events Events
	lists  Lists
	now    func() time.Time
}

func New(events Events, lists Lists) *Service {
	return &Service{events: events, lists: lists, now: time.Now}
}

// ─── Favorites ────────────────────────────────────────────────────────────────

// AddFavorite stores a snapshot of ev. Adding an id twice is a no-op.
func (s *Service) AddFavorite(ev model.Event) bool {
	favs := s.lists.Favorites()
	if _, ok := query.ByID(favs, ev.ID); ok {
		return false
	}
	s.lists.SetFavorites(append(favs, ev))
	return true
}

// RemoveFavorite drops id from the favorites and reports whether it was there.
func (s *Service) RemoveFavorite(id string) bool {
	favs := s.lists.Favorites()
	kept := make([]model.Event, 0, len(favs))
	for _, f := range favs {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(favs) {
		return false
	}
	s.lists.SetFavorites(kept)
	return true
}

func (s *Service) IsFavorite(id string) bool {
	_, ok := query.ByID(s.lists.Favorites(), id)
	return ok
}

// Favorites returns the favorites ordered by event date.
func (s *Service) Favorites() []model.Event {
	return query.SortByDate(s.lists.Favorites())
}

// ─── Reservations ─────────────────────────────────────────────────────────────

// Reserve checks payment and records a reservation for eventID.
func (s *Service) Reserve(ctx context.Context, eventID string, payment Payment) (model.Reservation, error) {
	if eventID == "" {
		return model.Reservation{}, model.MissingField("eventId")
	}

	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("load event: %w", err)
	}

	reservations := s.lists.Reservations()
	held := 0
	for _, r := range reservations {
		if r.EventID == eventID {
			held++
		}
	}
	if held > 0 {
		return model.Reservation{}, ErrAlreadyReserved
	}
	// Same check order as the payment page. Only a stored capacity of zero,
	// which NewEvent never writes but other clients can, reaches this.
	if ev.Capacity != nil && held >= *ev.Capacity {
		return model.Reservation{}, ErrNoSpotsAvailable
	}

	if err := payment.Validate(); err != nil {
		return model.Reservation{}, err
	}

	res := model.Reservation{
		ReservationID: uuid.NewString(),
		EventID:       ev.ID,
		EventTitle:    ev.Title,
		ReservedAt:    s.now().UTC().Format(time.RFC3339),
		Amount:        ev.Price,
		PaymentStatus: model.PaymentCompleted,
	}
	s.lists.SetReservations(append(reservations, res))
	logging.Info("reservation confirmed", "reservation", res.ReservationID, "event", ev.ID, "amount", res.Amount)
	return res, nil
}

// Reservations returns the stored reservations ordered by the date of the
// event they refer to. Reservations whose event cannot be resolved come
// last, in stored order.
func (s *Service) Reservations(ctx context.Context) []model.Reservation {
	reservations := s.lists.Reservations()

	dates := make(map[string]string, len(reservations))
	for _, r := range reservations {
		if _, done := dates[r.EventID]; done {
			continue
		}
		ev, err := s.events.Get(ctx, r.EventID)
		if err != nil {
			logging.Debug("reservation event not resolved", "event", r.EventID, "err", err)
			dates[r.EventID] = ""
			continue
		}
		dates[r.EventID] = ev.Date
	}

	sort.SliceStable(reservations, func(i, j int) bool {
		di, dj := dates[reservations[i].EventID], dates[reservations[j].EventID]
		if di == "" || dj == "" {
			return di != "" && dj == ""
		}
		return di < dj
	})
	return reservations
}

// CancelReservation removes the reservation with id. An unknown id is a no-op.
func (s *Service) CancelReservation(id string) bool {
	reservations := s.lists.Reservations()
	kept := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.ReservationID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(reservations) {
		return false
	}
	s.lists.SetReservations(kept)
	logging.Info("reservation cancelled", "reservation", id)
	return true
}
