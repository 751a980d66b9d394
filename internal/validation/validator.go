// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/siriustracker/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed constraint.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError collects every failed constraint of one struct.
type RequestValidationError struct {
	Fields []FieldError
}

// Error joins the field messages with "; ".
func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.Fields))
	for i, fe := range ve.Fields {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors the api package's error body without importing it.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts to the VALIDATION_ERROR body. A single failure keeps
// its own message; several are prefixed with their field names.
func (ve *RequestValidationError) ToAPIError() *APIError {
	apiErr := &APIError{Code: "VALIDATION_ERROR", Message: "Validation failed"}

	switch len(ve.Fields) {
	case 0:
	case 1:
		fe := ve.Fields[0]
		apiErr.Message = fe.Message
		apiErr.Details = map[string]interface{}{
			"field": fe.Field,
			"tag":   fe.Tag,
			"value": fe.Value,
		}
	default:
		fields := make([]map[string]interface{}, len(ve.Fields))
		messages := make([]string, len(ve.Fields))
		for i, fe := range ve.Fields {
			fields[i] = map[string]interface{}{
				"field":   fe.Field,
				"tag":     fe.Tag,
				"message": fe.Message,
			}
			messages[i] = fe.Field + ": " + fe.Message
		}
		apiErr.Message = strings.Join(messages, "; ")
		apiErr.Details = map[string]interface{}{"fields": fields}
	}
	return apiErr
}

// GetValidator returns the shared validator with the custom tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for an empty tag or nil func.
		_ = validate.RegisterValidation("playtimestamp", validatePlayTimestamp)
		_ = validate.RegisterValidation("station", validateStation)
	})
	return validate
}

// ValidateStruct returns nil when s passes every constraint.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{
			{Field: "unknown", Tag: "unknown", Message: err.Error()},
		}}
	}

	out := &RequestValidationError{Fields: make([]FieldError, len(fieldErrs))}
	for i, fe := range fieldErrs {
		out.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return out
}

// messages renders a failed tag. unit is " characters" for string fields.
var messages = map[string]func(field, param, unit string) string{
	"required":      func(f, _, _ string) string { return f + " is required" },
	"email":         func(f, _, _ string) string { return f + " must be a valid email address" },
	"datetime":      func(f, _, _ string) string { return f + " must be a valid date/time in RFC3339 format" },
	"playtimestamp": func(f, _, _ string) string { return f + " must be an RFC3339 timestamp or YYYY-MM-DDTHH:MM:SS" },
	"station":       func(f, _, _ string) string { return f + " must be a station identifier (letters, digits, '-', '_')" },
	"dive":          func(f, _, _ string) string { return f + " contains an invalid element" },
	"oneof":         func(f, p, _ string) string { return f + " must be one of: " + p },
	"gte":           func(f, p, _ string) string { return f + " must be greater than or equal to " + p },
	"lte":           func(f, p, _ string) string { return f + " must be less than or equal to " + p },
	"gt":            func(f, p, _ string) string { return f + " must be greater than " + p },
	"lt":            func(f, p, _ string) string { return f + " must be less than " + p },
	"min":           func(f, p, u string) string { return f + " must be at least " + p + u },
	"max":           func(f, p, u string) string { return f + " must be at most " + p + u },
}

func message(fe validator.FieldError) string {
	render, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
	unit := ""
	if fe.Kind().String() == "string" {
		unit = " characters"
	}
	return render(fe.Field(), fe.Param(), unit)
}

// stationPattern matches xmplaylist station identifiers such as
// "comedygreats" or "siriusxm-comedy".
var stationPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

func validatePlayTimestamp(fl validator.FieldLevel) bool {
	_, err := models.ParsePlayTimestamp(fl.Field().String())
	return err == nil
}

func validateStation(fl validator.FieldLevel) bool {
	return stationPattern.MatchString(fl.Field().String())
}
