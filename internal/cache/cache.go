// Package cache is the client's persisted mirror of the event collection.
//
// Events are kept in one bucket per category under the key
// "<category>Events". The same storage also holds the client's favorites
// ("favoriteEvents") and reservations ("eventReservations").
//
// Reads never fail: a missing or unreadable bucket is empty. Write
// failures are logged and dropped, so callers can treat the cache as
// always available.
package cache

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
)

const (
	FavoritesKey    = "favoriteEvents"
	ReservationsKey = "eventReservations"
)

// ErrClosed is returned by Close on an already closed cache.
var ErrClosed = errors.New("cache is closed")

// EventsKey is the storage key of a category bucket.
func EventsKey(c model.Category) string {
	return string(c) + "Events"
}

// Options configures a cache session.
type Options struct {
	// Samples, when non-empty, are seeded once as the session opens.
	Samples []model.Event
}

// LocalCache is one client session over a Storage. It is safe for
// concurrent use within a process; separate processes sharing the same
// storage are not coordinated.
type LocalCache struct {
	mu      sync.Mutex
	storage Storage
	closed  bool
}

// Open starts a session over storage and seeds opts.Samples.
func Open(storage Storage, opts Options) *LocalCache {
	c := &LocalCache{storage: storage}
	if len(opts.Samples) > 0 {
		c.Seed(opts.Samples)
	}
	return c
}

// Close ends the session. Later reads are empty and writes are dropped.
func (c *LocalCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return nil
}

// Get returns the bucket for category in stored order.
func (c *LocalCache) Get(category model.Category) []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events(category)
}

// GetAll concatenates the buckets for categories in the order given.
func (c *LocalCache) GetAll(categories []model.Category) []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := []model.Event{}
	for _, cat := range categories {
		all = append(all, c.events(cat)...)
	}
	return all
}

// Append adds ev to the end of the category bucket and persists it.
func (c *LocalCache) Append(category model.Category, ev model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := c.events(category)
	c.put(EventsKey(category), append(events, ev))
}

// Remove drops every record with id from the category bucket. An absent
// id leaves the bucket untouched, and a bucket left empty is deleted.
func (c *LocalCache) Remove(category model.Category, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := c.events(category)
	kept := events[:0]
	for _, e := range events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(events) {
		return
	}
	if len(kept) == 0 {
		c.drop(EventsKey(category))
		return
	}
	c.put(EventsKey(category), kept)
}

// Seed adds each sample to its category bucket unless a record with the
// same id is already there.
func (c *LocalCache) Seed(samples []model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byCategory := make(map[model.Category][]model.Event)
	var order []model.Category
	for _, s := range samples {
		cat := model.NormalizeCategory(string(s.Category))
		if _, seen := byCategory[cat]; !seen {
			order = append(order, cat)
			byCategory[cat] = c.events(cat)
		}
		if containsID(byCategory[cat], s.ID) {
			continue
		}
		s.Category = cat
		byCategory[cat] = append(byCategory[cat], s)
		logging.Debug("seeded sample event", "id", s.ID, "category", cat)
	}
	for _, cat := range order {
		c.put(EventsKey(cat), byCategory[cat])
	}
}

// Favorites returns the stored favorites list.
func (c *LocalCache) Favorites() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var favs []model.Event
	if !c.load(FavoritesKey, &favs) || favs == nil {
		return []model.Event{}
	}
	return favs
}

// SetFavorites replaces the favorites list.
func (c *LocalCache) SetFavorites(favs []model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if favs == nil {
		favs = []model.Event{}
	}
	c.put(FavoritesKey, favs)
}

// Reservations returns the stored reservations list.
func (c *LocalCache) Reservations() []model.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	var res []model.Reservation
	if !c.load(ReservationsKey, &res) || res == nil {
		return []model.Reservation{}
	}
	return res
}

// SetReservations replaces the reservations list.
func (c *LocalCache) SetReservations(res []model.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if res == nil {
		res = []model.Reservation{}
	}
	c.put(ReservationsKey, res)
}

// events must be called with c.mu held.
func (c *LocalCache) events(category model.Category) []model.Event {
	var events []model.Event
	if !c.load(EventsKey(category), &events) || events == nil {
		return []model.Event{}
	}
	return events
}

func (c *LocalCache) load(key string, dst any) bool {
	if c.closed {
		return false
	}
	data, ok, err := c.storage.Get(key)
	if err != nil {
		logging.Error("cache read failed", err, "key", key)
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logging.Warn("ignoring corrupt cache entry", "key", key, "err", err)
		return false
	}
	return true
}

func (c *LocalCache) put(key string, v any) {
	if c.closed {
		logging.Warn("write to closed cache dropped", "key", key)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error("cache encode failed", err, "key", key)
		return
	}
	if err := c.storage.Set(key, data); err != nil {
		logging.Error("cache write failed", err, "key", key)
	}
}

func (c *LocalCache) drop(key string) {
	if c.closed {
		logging.Warn("delete on closed cache dropped", "key", key)
		return
	}
	if err := c.storage.Delete(key); err != nil {
		logging.Error("cache delete failed", err, "key", key)
	}
}

func containsID(events []model.Event, id string) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}
