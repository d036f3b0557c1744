package schema

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single validation failure so callers can surface a
// field-level message next to the offending input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// phonePattern matches digits with an optional leading plus, max 16 digits,
// after separators have been stripped by NormalizePhone.
var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizePhone strips spaces, dashes, and parentheses from a phone number.
func NormalizePhone(s string) string {
	return phoneSeparators.Replace(s)
}

// ValidPhone reports whether the phone number matches the numeric pattern
// after separator stripping.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

// dateLayouts are the accepted preferredDate formats, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a preferredDate string.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateBeforeToday reports whether t falls on a calendar day strictly before
// now. Time of day is ignored on both sides.
func DateBeforeToday(t, now time.Time) bool {
	day := func(x time.Time) time.Time {
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC)
	}
	return day(t).Before(day(now))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so error details match the wire contract.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("lead_phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})

	_ = v.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		t, ok := ParseDate(fl.Field().String())
		if !ok {
			return false
		}
		return !DateBeforeToday(t, time.Now())
	})

	return v
}

// fieldMessages are the user-facing messages for each field, mirroring the
// wording shown in the booking form.
var fieldMessages = map[string]string{
	"firstName":     "First name must be at least 2 characters",
	"lastName":      "Last name must be at least 2 characters",
	"email":         "Please enter a valid email address",
	"phone":         "Please enter a valid phone number",
	"serviceType":   "Please select a service type",
	"propertyType":  "Please select a property type",
	"squareFootage": "Square footage must be at least 1",
	"preferredDate": "Preferred date cannot be in the past",
	"message":       "Message must be 500 characters or less",
}

// Validate checks every field of the lead and returns field-level errors.
// An empty slice means the lead satisfies the schema.
func (l *Lead) Validate() []FieldError {
	err := validate.Struct(l)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: "Invalid form data"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = "Invalid value"
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// ValidateFields validates the lead and keeps only errors for the named JSON
// fields. The wizard uses this to gate step advancement without penalizing
// fields the visitor has not reached yet.
func (l *Lead) ValidateFields(fields ...string) []FieldError {
	errs := l.Validate()
	if len(errs) == 0 {
		return nil
	}

	keep := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		keep[f] = struct{}{}
	}

	var out []FieldError
	for _, fe := range errs {
		if _, ok := keep[fe.Field]; ok {
			out = append(out, fe)
		}
	}
	return out
}
