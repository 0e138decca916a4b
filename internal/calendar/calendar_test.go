package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/eventboard/eventboard/internal/model"
)

func TestExport(t *testing.T) {
	events := []model.Event{
		{
			ID:          "kosovo-hiking-2025",
			Title:       "Kosovo Hiking Adventure",
			Organizer:   "KosovoHiking",
			Date:        "2025-07-20",
			Time:        "08:00",
			Location:    "Rugova Mountains, Kosovo",
			Description: "Guided hike &amp; picnic",
			Email:       "info@kosovohiking.com",
		},
		{ID: "broken", Title: "No date", Date: "someday"},
	}

	body := Export(events, time.UTC, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	required := []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"PRODID:" + ProductID,
		"UID:kosovo-hiking-2025@eventboard",
		"SUMMARY:Kosovo Hiking Adventure",
		"DTSTART:20250720T080000Z",
		"DTEND:20250720T090000Z",
		"END:VCALENDAR",
	}
	for _, field := range required {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing %q", field)
		}
	}

	if strings.Contains(body, "&amp;") {
		t.Error("stored HTML entities should be decoded in the feed")
	}
	if n := strings.Count(body, "BEGIN:VEVENT"); n != 1 {
		t.Errorf("expected 1 event (unparseable date skipped), got %d", n)
	}
}

func TestStartTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	got, ok := StartTime(model.Event{Date: "2025-11-10", Time: "10:00"}, loc)
	if !ok || !got.Equal(time.Date(2025, 11, 10, 10, 0, 0, 0, loc)) {
		t.Errorf("StartTime = %v, %v", got, ok)
	}

	got, ok = StartTime(model.Event{Date: "2025-11-10", Time: "late"}, loc)
	if !ok || got.Hour() != 0 {
		t.Errorf("bad time should fall back to midnight, got %v", got)
	}

	if _, ok := StartTime(model.Event{Date: "10/11/2025"}, loc); ok {
		t.Error("bad date should fail")
	}
}
