// Package query filters and orders event sets for display. All functions
// are pure: they never modify their input slice.
package query

import (
	"sort"
	"strings"

	"github.com/eventboard/eventboard/internal/model"
)

// ByCategory keeps events of category c. An empty c keeps everything.
func ByCategory(events []model.Event, c model.Category) []model.Event {
	if c == "" {
		return clone(events)
	}
	return filter(events, func(e model.Event) bool { return e.Category == c })
}

// ByID returns the first event with id, if any.
func ByID(events []model.Event, id string) (model.Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return model.Event{}, false
}

// ByCity keeps events whose location contains city or is contained in it,
// ignoring case. An empty city keeps everything.
func ByCity(events []model.Event, city string) []model.Event {
	return ByCities(events, []string{city})
}

// ByCities is ByCity for several spellings of one place: an event is kept
// when any of names matches its location. Blank names are ignored, and
// with none left everything is kept.
func ByCities(events []model.Event, names []string) []model.Event {
	needles := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			needles = append(needles, n)
		}
	}
	if len(needles) == 0 {
		return clone(events)
	}
	return filter(events, func(e model.Event) bool {
		loc := strings.ToLower(strings.TrimSpace(e.Location))
		if loc == "" {
			return false
		}
		for _, n := range needles {
			if strings.Contains(loc, n) || strings.Contains(n, loc) {
				return true
			}
		}
		return false
	})
}

// LookupCity finds the catalogue entry whose local or English name equals
// name, ignoring case.
func LookupCity(cities []model.City, name string) (model.City, bool) {
	name = strings.TrimSpace(name)
	for _, c := range cities {
		for _, n := range c.Names() {
			if strings.EqualFold(n, name) {
				return c, true
			}
		}
	}
	return model.City{}, false
}

// ResolveCity expands a city typed by the user into every spelling the
// catalogue knows for it. Unknown names are returned as given.
func ResolveCity(cities []model.City, name string) []string {
	if c, ok := LookupCity(cities, name); ok {
		return c.Names()
	}
	return []string{name}
}

// SortByDate returns events ordered by date ascending. Dates compare as
// strings, which orders YYYY-MM-DD correctly and never fails on junk;
// ties keep their input order.
func SortByDate(events []model.Event) []model.Event {
	out := clone(events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// Valid reports whether e has the fields needed to render it.
func Valid(e model.Event) bool {
	return strings.TrimSpace(e.Title) != "" &&
		strings.TrimSpace(e.Date) != "" &&
		strings.TrimSpace(e.Location) != "" &&
		strings.TrimSpace(e.Organizer) != ""
}

// OnlyValid drops records that fail Valid.
func OnlyValid(events []model.Event) []model.Event {
	return filter(events, Valid)
}

// Dedupe keeps the first record seen for each id.
func Dedupe(events []model.Event) []model.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func filter(events []model.Event, keep func(model.Event) bool) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func clone(events []model.Event) []model.Event {
	return append(make([]model.Event, 0, len(events)), events...)
}
