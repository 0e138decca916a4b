// Package calendar renders event sets as iCalendar feeds.
package calendar

import (
	"html"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
)

const (
	ProductID       = "-//eventboard//Community Events//EN"
	uidDomain       = "eventboard"
	defaultDuration = time.Hour
)

// Export renders events as a published calendar. Dates and times are read
// in loc; events whose date cannot be parsed are left out.
func Export(events []model.Event, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)

	for _, e := range events {
		start, ok := StartTime(e, loc)
		if !ok {
			logging.Debug("skipping event with unparseable date", "id", e.ID, "date", e.Date)
			continue
		}

		vevent := cal.AddEvent(e.ID + "@" + uidDomain)
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(start)
		vevent.SetEndAt(start.Add(defaultDuration))
		vevent.SetSummary(html.UnescapeString(e.Title))
		vevent.SetLocation(html.UnescapeString(e.Location))
		vevent.SetDescription(html.UnescapeString(e.Description))
		if e.Email != "" {
			vevent.SetOrganizer("mailto:"+e.Email, ics.WithCN(html.UnescapeString(e.Organizer)))
		}
	}

	return cal.Serialize()
}

// StartTime combines the record's date and time in loc. A missing or
// malformed time falls back to midnight; a malformed date fails.
func StartTime(e model.Event, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", e.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", e.Time)
	if err != nil {
		return day, true
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), true
}
