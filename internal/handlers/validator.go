// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	"codeberg.org/mainda/accounts/internal/services/password"
	"github.com/go-playground/validator/v10"
)

// Validator checks request bodies before they reach the account flows.
// A field's msg tag is the message reported when it fails; fields without
// one get a generic message.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns the echo validator for request bodies.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("birthdate", func(fl validator.FieldLevel) bool {
		_, err := parseBirthDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	// bcrypt's limit is in bytes; max counts runes.
	if err := v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= password.MaxLength
	}); err != nil {
		panic(err)
	}

	return &Validator{validate: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(t, fe))
	}
	return apperr.Validation(messages)
}

func fieldMessage(t reflect.Type, fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "bcryptmax":
		return fmt.Sprintf("%s must be at most %d bytes long", fe.Field(), password.MaxLength)
	}
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	if fe.Tag() == "required" {
		return fe.Field() + " is required"
	}
	return fe.Field() + " is invalid"
}

// birthDate parses a validated birthDate field.
func birthDate(s string) (time.Time, error) {
	d, err := parseBirthDate(s)
	if err != nil {
		return time.Time{}, apperr.Validation([]string{"Invalid date format"})
	}
	return d, nil
}

// parseBirthDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func parseBirthDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d.UTC(), nil
}
