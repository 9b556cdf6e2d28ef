// Package validation checks reporter and admin payloads before they reach
// persistence. A payload is either fully accepted and normalized into a typed
// record or rejected with every field error at once.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"campusreport/backend/internal/config"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterAlias("reporter_name", fmt.Sprintf("required,min=%d", config.MinReporterNameLength))
	validate.RegisterAlias("study_program", fmt.Sprintf("required,min=%d", config.MinStudyProgramLength))
	validate.RegisterAlias("nim", fmt.Sprintf("required,min=%d", config.MinNIMLength))
	validate.RegisterAlias("whatsapp", fmt.Sprintf("required,min=%d", config.MinWhatsAppLength))
	validate.RegisterAlias("chronology", fmt.Sprintf("required,min=%d", config.MinChronologyLength))
	validate.RegisterAlias("transfer_amount", fmt.Sprintf("gte=%d", config.MinTransferAmount))

	if err := validate.RegisterValidation("datetime_any", validateDateTime); err != nil {
		panic(err)
	}
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Errors is the complete set of field errors for one payload.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the rejected fields.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Field builds a single-field Errors value.
func Field(field, rule, message string) Errors {
	return Errors{{Field: field, Rule: rule, Message: message}}
}

func check(s interface{}) Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{{Field: "payload", Rule: "invalid", Message: err.Error()}}
	}
	out := make(Errors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field:   e.Field(),
			Rule:    e.ActualTag(),
			Param:   e.Param(),
			Message: message(e),
		})
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.ActualTag() {
	case "required":
		return "wajib diisi"
	case "email":
		return "format email tidak valid"
	case "min":
		return "minimal " + e.Param() + " karakter"
	case "gte":
		return "minimal " + e.Param()
	case "oneof":
		return "harus salah satu dari: " + e.Param()
	case "datetime_any":
		return "waktu tidak valid"
	default:
		return "tidak valid"
	}
}

func merge(a, b Errors) Errors {
	if len(a) == 0 {
		return b
	}
	return append(a, b...)
}

// dateTimeLayouts are tried in order when parsing a reporter supplied timestamp.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime parses value and normalizes it to UTC. Values without an
// explicit zone are read in loc.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, loc)
		}
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", value)
}

func validateDateTime(fl validator.FieldLevel) bool {
	_, err := ParseDateTime(fl.Field().String(), time.UTC)
	return err == nil
}
