// Package reconcile merges the shared remote store with the client's
// local cache into one event set per query.
//
// The remote store is always asked first. A single-category view consults
// the cache only when the remote is unreachable, or when it answers with
// nothing while the cache has matching records. Views spanning categories
// (city and all-events lookups) always merge both sources. On id
// collisions the remote copy wins.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/query"
)

// Remote is the shared store. *remote.Client implements it.
type Remote interface {
	List(ctx context.Context, f model.Filter) ([]model.Event, error)
	Create(ctx context.Context, ev model.Event) (model.Event, error)
	Delete(ctx context.Context, id string) (string, error)
}

// Cache is the client's local mirror. *cache.LocalCache implements it.
type Cache interface {
	Get(category model.Category) []model.Event
	GetAll(categories []model.Category) []model.Event
	Append(category model.Category, ev model.Event)
	Remove(category model.Category, id string)
}

// Options configures a Reconciler.
type Options struct {
	// Category is the page category used when a query names none. Empty
	// means the session spans all Categories.
	Category model.Category
	// Categories is the set consulted by cross-category lookups (id, city
	// and aggregate views). Defaults to every known category.
	Categories []model.Category
	// Cities is the catalogue used to expand a city query into all of its
	// known spellings. Cities not listed are matched as typed.
	Cities []model.City
}

// Query describes what a caller wants to show.
type Query struct {
	Category  model.Category
	ID        string
	City      string
	Aggregate bool // drop incomplete records, for the all-events view
}

// Reconciler answers queries from the remote store with cache fallback.
type Reconciler struct {
	remote Remote
	cache  Cache
	opts   Options
	now    func() time.Time
}

// New builds a Reconciler for one client session.
func New(remote Remote, cache Cache, opts Options) *Reconciler {
	if len(opts.Categories) == 0 {
		opts.Categories = model.Categories
	}
	return &Reconciler{remote: remote, cache: cache, opts: opts, now: time.Now}
}

// Categories returns the configured cross-category set.
func (r *Reconciler) Categories() []model.Category {
	return r.opts.Categories
}

// Query returns the events matching q, de-duplicated and sorted by date.
// Not-found and validation answers from the remote are returned as is;
// only remote unavailability falls back to the cache.
func (r *Reconciler) Query(ctx context.Context, q Query) ([]model.Event, error) {
	category := r.impliedCategory(q)

	remoteEvents, err := r.remote.List(ctx, model.Filter{Category: category, ID: q.ID})
	unavailable := false
	if err != nil {
		if !errors.Is(err, model.ErrRemoteUnavailable) {
			return nil, err
		}
		logging.Warn("remote store unavailable, using local cache", "err", err, "category", category)
		unavailable = true
		remoteEvents = nil
	}

	merged := remoteEvents
	local := r.localEvents(category, q.ID)
	if unavailable || spansCategories(category, q) || (len(remoteEvents) == 0 && len(local) > 0) {
		merged = append(append([]model.Event{}, remoteEvents...), local...)
	}

	return r.apply(merged, category, q), nil
}

// Get returns the event with id from either source, or model.ErrNotFound.
func (r *Reconciler) Get(ctx context.Context, id string) (model.Event, error) {
	events, err := r.Query(ctx, Query{ID: id})
	if err != nil {
		return model.Event{}, err
	}
	if len(events) == 0 {
		return model.Event{}, model.ErrNotFound
	}
	return events[0], nil
}

// Create validates req, stores the record locally and then remotely.
// Neither write is rolled back if the other fails. When the remote is
// unreachable the local record is returned without error.
func (r *Reconciler) Create(ctx context.Context, req model.CreateEventRequest) (model.Event, error) {
	now := r.now()
	if req.ID == "" {
		req.ID = strconv.FormatInt(now.UnixMilli(), 10)
	}
	ev, err := model.NewEvent(req, now)
	if err != nil {
		return model.Event{}, err
	}

	r.cache.Append(ev.Category, ev)

	stored, err := r.remote.Create(ctx, ev)
	if err != nil {
		if errors.Is(err, model.ErrRemoteUnavailable) {
			logging.Warn("event saved locally only", "id", ev.ID, "err", err)
			return ev, nil
		}
		return ev, fmt.Errorf("remote create: %w", err)
	}
	logging.Info("event created", "id", stored.ID, "category", stored.Category)
	return stored, nil
}

// Delete removes id from every configured cache bucket, then from the
// remote store. A remote not-found is returned; unavailability is logged
// and otherwise ignored.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.MissingField("id")
	}
	for _, c := range r.opts.Categories {
		r.cache.Remove(c, id)
	}

	if _, err := r.remote.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrRemoteUnavailable) {
			logging.Warn("event deleted locally only", "id", id, "err", err)
			return nil
		}
		return err
	}
	logging.Info("event deleted", "id", id)
	return nil
}

// impliedCategory is the single bucket a query is about, or "" when the
// query spans the configured categories.
func (r *Reconciler) impliedCategory(q Query) model.Category {
	if q.Category != "" {
		return q.Category
	}
	if q.ID != "" || q.City != "" || q.Aggregate {
		return ""
	}
	return r.opts.Category
}

// spansCategories reports whether q is a cross-category listing. Those
// views combine the server with what this client has cached.
func spansCategories(category model.Category, q Query) bool {
	return q.ID == "" && (category == "" || q.City != "")
}

func (r *Reconciler) localEvents(category model.Category, id string) []model.Event {
	var events []model.Event
	if category != "" {
		events = r.cache.Get(category)
	} else {
		events = r.cache.GetAll(r.opts.Categories)
	}
	events = query.ByCategory(events, category)
	if id != "" {
		if e, ok := query.ByID(events, id); ok {
			return []model.Event{e}
		}
		return nil
	}
	return events
}

func (r *Reconciler) apply(events []model.Event, category model.Category, q Query) []model.Event {
	events = query.Dedupe(events)
	if category != "" {
		events = query.ByCategory(events, category)
	} else {
		events = r.inCategories(events)
	}
	if q.ID != "" {
		e, ok := query.ByID(events, q.ID)
		if !ok {
			return []model.Event{}
		}
		return []model.Event{e}
	}
	if q.City != "" {
		events = query.ByCities(events, query.ResolveCity(r.opts.Cities, q.City))
	}
	if q.Aggregate {
		events = query.OnlyValid(events)
	}
	return query.SortByDate(events)
}

func (r *Reconciler) inCategories(events []model.Event) []model.Event {
	allowed := make(map[model.Category]struct{}, len(r.opts.Categories))
	for _, c := range r.opts.Categories {
		allowed[c] = struct{}{}
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if _, ok := allowed[e.Category]; ok {
			out = append(out, e)
		}
	}
	return out
}
