package model

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the store was reached and holds no record
// with the requested id.
var ErrNotFound = errors.New("event not found")

// ErrRemoteUnavailable is returned when the remote store could not be
// reached or answered with something other than a definitive response.
// It is the only error that sends callers to their local cache.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

// ValidationKind classifies a ValidationError.
type ValidationKind string

const (
	KindMissingField   ValidationKind = "missingField"
	KindInvalidEmail   ValidationKind = "invalidEmail"
	KindInvalidPayload ValidationKind = "invalidPayload"
)

const missingFieldPrefix = "Missing required field: "

// ValidationError rejects bad or missing input on create.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return missingFieldPrefix + e.Field
	case KindInvalidEmail:
		return "Invalid email address"
	default:
		if e.Message == "" {
			return "Invalid request"
		}
		return e.Message
	}
}

// MissingField builds the error for an absent required field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Kind: KindMissingField, Field: field}
}

// ParseValidationMessage rebuilds a ValidationError from the message a
// store put on the wire.
func ParseValidationMessage(msg string) *ValidationError {
	switch {
	case strings.HasPrefix(msg, missingFieldPrefix):
		return MissingField(strings.TrimPrefix(msg, missingFieldPrefix))
	case msg == "Invalid email address":
		return &ValidationError{Kind: KindInvalidEmail, Field: "email"}
	default:
		return &ValidationError{Kind: KindInvalidPayload, Message: msg}
	}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
