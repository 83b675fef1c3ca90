// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package validation checks decoded REST request bodies against their
// `validate` struct tags and turns failures into VALIDATION_ERROR responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/syncify/internal/models"
)

const errorCode = "VALIDATION_ERROR"

// FieldError describes one failed rule. Field is the JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// RequestValidationError holds every failed rule of a request body.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	for i, f := range e.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Message)
	}
	return b.String()
}

// ToAPIError renders the failures for the response envelope. The first
// failing field is also surfaced on its own for simple clients.
func (e *RequestValidationError) ToAPIError() *models.APIError {
	apiErr := &models.APIError{Code: errorCode, Message: e.Error()}
	if len(e.Fields) > 0 {
		apiErr.Details = map[string]interface{}{
			"field":  e.Fields[0].Field,
			"fields": e.Fields,
		}
	}
	return apiErr
}

var shared = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	// whitespace-only strings fail notblank
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
})

// Default returns the process-wide validator.
func Default() *validator.Validate { return shared() }

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// ValidateStruct returns nil when s passes every rule.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "body", Tag: "invalid", Message: err.Error()}}}
	}
	out := &RequestValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	f, p := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "notblank":
		return f + " must not be blank"
	case "email":
		return f + " must be a valid email address"
	case "uuid":
		return f + " must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, p)
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", f, bound, p)
		}
		return fmt.Sprintf("%s must be %s %s", f, bound, p)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is absent", f, p)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", f, p)
	}
	return fmt.Sprintf("%s failed %s validation", f, fe.Tag())
}
