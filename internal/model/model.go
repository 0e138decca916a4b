// Package model defines the core domain types for the event listing system.
package model

import "strings"

// Category is one of the fixed event categories.
type Category string

const (
	CategoryKids    Category = "kids"
	CategorySports  Category = "sports"
	CategoryMusic   Category = "music"
	CategoryArt     Category = "art"
	CategoryBakery  Category = "bakery"
	CategoryReading Category = "reading"
)

// DefaultCategory is assigned when a record arrives without a usable category.
const DefaultCategory = CategoryKids

// Categories lists every category in display order.
var Categories = []Category{
	CategoryKids,
	CategorySports,
	CategoryMusic,
	CategoryArt,
	CategoryBakery,
	CategoryReading,
}

// ParseCategory reports whether s names a known category, ignoring case
// and surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// NormalizeCategory maps s onto the enumeration, falling back to DefaultCategory.
func NormalizeCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return DefaultCategory
}

// Event is one calendar event as stored in the shared collection and
// mirrored into client caches.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Organizer   string   `json:"organizer"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Capacity    *int     `json:"capacity"`
	Email       string   `json:"email"`
	Phone       *string  `json:"phone"`
	Category    Category `json:"category"`
	Image       string   `json:"image,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

// IsFree reports whether the event has no ticket price.
func (e Event) IsFree() bool {
	return e.Price <= 0
}

// Request converts a stored record back into a create payload, e.g. to
// forward a locally created event to the remote store.
func (e Event) Request() CreateEventRequest {
	req := CreateEventRequest{
		ID:          e.ID,
		Title:       e.Title,
		Organizer:   e.Organizer,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Description: e.Description,
		Price:       NumberOf(e.Price),
		Email:       e.Email,
		Category:    string(e.Category),
		Image:       e.Image,
		CreatedAt:   e.CreatedAt,
	}
	if e.Capacity != nil {
		req.Capacity = NumberOf(float64(*e.Capacity))
	}
	if e.Phone != nil {
		req.Phone = *e.Phone
	}
	return req
}

// CreateEventRequest is the payload for creating a new event. id and
// createdAt are optional; price and capacity tolerate strings and junk.
type CreateEventRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Organizer   string `json:"organizer"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Price       Number `json:"price"`
	Capacity    Number `json:"capacity"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Filter narrows a listing. ID takes precedence over Category.
type Filter struct {
	Category Category
	ID       string
}

// Reservation is a mock ticket purchase held by one client.
type Reservation struct {
	ReservationID string  `json:"reservationId"`
	EventID       string  `json:"eventId"`
	EventTitle    string  `json:"eventTitle"`
	ReservedAt    string  `json:"reservedAt"`
	Amount        float64 `json:"amount"`
	PaymentStatus string  `json:"paymentStatus"`
}

// PaymentCompleted is the only status the mock payment produces.
const PaymentCompleted = "completed"

// CreateEventResponse is returned by POST /events.
type CreateEventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Event   Event  `json:"event"`
}

// DeleteEventResponse is returned by DELETE /events.
type DeleteEventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EventID string `json:"eventId"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
