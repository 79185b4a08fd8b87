// Package validation checks request payloads before they reach the services.
// Rules live in validator/v10 struct tags; messages come from a table keyed by
// tag so that every violation on a payload is reported at once.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

// FieldError names one violated rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every violation found on a payload.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError builds an Error with a single violation.
func NewError(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := ParseCalendarDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Struct validates s against its tags and returns an *Error listing every
// violation, or nil.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

var messages = map[string]string{
	"required":     "is required",
	"email":        "must be a valid email address",
	"http_url":     "must be a valid http or https URL",
	"oneof":        "must be one of: %s",
	"calendardate": "must be a date in YYYY-MM-DD format",
}

func message(fe validator.FieldError) string {
	if fe.Tag() == "min" {
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	}

	m, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(m, "%s") {
		return fmt.Sprintf(m, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return m
}

// ParseCalendarDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp and
// returns the calendar date it names.
func ParseCalendarDate(s string) (models.Date, error) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return models.NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid calendar date %q", s)
	}
	return models.NewDate(t), nil
}

// FromDecodeError turns a JSON type mismatch on a named field into an
// *Error for that field. Other decode failures are reported as not
// convertible.
func FromDecodeError(err error) (*Error, bool) {
	var te *json.UnmarshalTypeError
	if !errors.As(err, &te) || te.Field == "" {
		return nil, false
	}
	return NewError(te.Field, "must be "+expectedKind(te.Type)), true
}

func expectedKind(t reflect.Type) string {
	if t == tagListType {
		return "a string or an array of strings"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	}
	return "of type " + t.String()
}

// jsonKind names the JSON type of a raw value the way encoding/json does in
// its own type errors.
func jsonKind(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return "value"
	}
	switch b[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	}
	return "number"
}
