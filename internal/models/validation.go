package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

// Error implements error so FieldErrors can travel through error returns.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var fieldMessages = map[string]string{
	"name":     "name is required",
	"category": "at least one category is required",
	"price":    "price must be greater than 0",
	"quantity": "quantity must not be negative",
	"priority": "priority must be between 1 and 5",
	"discount": "discount must be between 0 and 100",
}

var productValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateProduct checks the record invariants and returns nil when p is valid.
func ValidateProduct(p Product) FieldErrors {
	p.Name = strings.TrimSpace(p.Name)
	err := productValidator.Struct(p)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(validationErrors))
	for _, e := range validationErrors {
		msg, ok := fieldMessages[e.Field()]
		if !ok {
			msg = "field '" + e.Field() + "' failed on the '" + e.Tag() + "' tag"
		}
		out[e.Field()] = msg
	}
	return out
}
