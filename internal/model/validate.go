package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreatedAtLayout is the sortable, displayable format of Event.CreatedAt.
const CreatedAtLayout = "2006-01-02 15:04:05"

var validate = validator.New()

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// NewEvent validates a create request and builds the record to store.
// Free text is sanitized before the required fields are checked, so input
// that is only markup counts as missing. Fields are checked in a fixed
// order and the first missing one is reported. Price and capacity are
// coerced, and id/createdAt are assigned.
func NewEvent(req CreateEventRequest, now time.Time) (Event, error) {
	email := strings.TrimSpace(req.Email)
	event := Event{
		ID:          strings.TrimSpace(req.ID),
		Title:       Sanitize(req.Title),
		Organizer:   Sanitize(req.Organizer),
		Date:        Sanitize(req.Date),
		Time:        Sanitize(req.Time),
		Location:    Sanitize(req.Location),
		Description: Sanitize(req.Description),
		Price:       coercePrice(req.Price),
		Capacity:    coerceCapacity(req.Capacity),
		Email:       sanitizeEmail(email),
		Category:    NormalizeCategory(req.Category),
		Image:       Sanitize(req.Image),
		CreatedAt:   now.Format(CreatedAtLayout),
	}

	required := []struct {
		name  string
		value string
	}{
		{"title", event.Title},
		{"organizer", event.Organizer},
		{"date", event.Date},
		{"time", event.Time},
		{"location", event.Location},
		{"description", event.Description},
		{"email", email},
	}
	for _, f := range required {
		if f.value == "" {
			return Event{}, MissingField(f.name)
		}
	}
	if !ValidEmail(email) {
		return Event{}, &ValidationError{Kind: KindInvalidEmail, Field: "email"}
	}

	if phone := Sanitize(req.Phone); phone != "" {
		event.Phone = &phone
	}
	if event.ID == "" {
		event.ID = NewServerID(now)
	}
	return event, nil
}

// NewServerID synthesizes an id of the form <unix-ms>_<random-suffix>.
func NewServerID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
	return fmt.Sprintf("%d_%s", now.UnixMilli(), suffix)
}

func coercePrice(n Number) float64 {
	if !n.Valid || n.Value < 0 {
		return 0
	}
	return n.Value
}

func coerceCapacity(n Number) *int {
	if !n.Valid {
		return nil
	}
	c := int(n.Value)
	if c <= 0 {
		return nil
	}
	return &c
}
