package booking

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eventboard/eventboard/internal/model"
)

// Payment is the mock card form. Nothing is charged; the details are
// only checked for shape.
type Payment struct {
	CardNumber string `validate:"required,credit_card"`
	Expiry     string `validate:"required,card_expiry"`
	CVV        string `validate:"required,len=3,numeric"`
	CardName   string `validate:"required"`
}

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("card_expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

var paymentMessages = map[string]string{
	"CardNumber": "Invalid card number",
	"Expiry":     "Invalid expiry date, use MM/YY",
	"CVV":        "Invalid CVV",
	"CardName":   "Cardholder name is required",
}

// Validate checks the card details. Spaces in the card number are
// ignored, as the form groups digits in fours.
func (p Payment) Validate() error {
	normalized := Payment{
		CardNumber: strings.ReplaceAll(strings.TrimSpace(p.CardNumber), " ", ""),
		Expiry:     strings.TrimSpace(p.Expiry),
		CVV:        strings.TrimSpace(p.CVV),
		CardName:   strings.TrimSpace(p.CardName),
	}

	err := validate.Struct(normalized)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		return &model.ValidationError{
			Kind:    model.KindInvalidPayload,
			Field:   field,
			Message: paymentMessages[field],
		}
	}
	return err
}
