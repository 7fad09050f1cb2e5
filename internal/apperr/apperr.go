// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperr defines the coded errors surfaced by the account flows
// and the HTTP status each code maps to.
package apperr

import (
	"net/http"

	"github.com/samber/oops"
)

// Error codes.
const (
	CodeValidation               = "VALIDATION_FAILED"
	CodeInvalidCredentials       = "INVALID_CREDENTIALS"
	CodeEmailNotVerified         = "EMAIL_NOT_VERIFIED"
	CodeAccountDeactivated       = "ACCOUNT_DEACTIVATED"
	CodeEmailInUse               = "EMAIL_IN_USE"
	CodeEmailNotFound            = "EMAIL_NOT_FOUND"
	CodeParentNotFound           = "PARENT_NOT_FOUND"
	CodeChildNotFound            = "CHILD_NOT_FOUND"
	CodeChildNotFoundOrForbidden = "CHILD_NOT_FOUND_OR_UNAUTHORIZED"
	CodeInvalidVerification      = "INVALID_VERIFICATION_TOKEN"
	CodeVerificationExpired      = "VERIFICATION_TOKEN_EXPIRED"
	CodeEmailAlreadyVerified     = "EMAIL_ALREADY_VERIFIED"
	CodeInvalidResetToken        = "INVALID_RESET_TOKEN"
	CodeInvalidRefreshToken      = "INVALID_REFRESH_TOKEN"
	CodeAccessTokenMissing       = "ACCESS_TOKEN_MISSING"
	CodeInvalidAccessToken       = "INVALID_ACCESS_TOKEN"
	CodeForbidden                = "FORBIDDEN"
	CodeUsernameUnavailable      = "USERNAME_UNAVAILABLE"
	CodeInternal                 = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeValidation:               http.StatusBadRequest,
	CodeInvalidCredentials:       http.StatusUnauthorized,
	CodeEmailNotVerified:         http.StatusForbidden,
	CodeAccountDeactivated:       http.StatusForbidden,
	CodeEmailInUse:               http.StatusConflict,
	CodeEmailNotFound:            http.StatusNotFound,
	CodeParentNotFound:           http.StatusNotFound,
	CodeChildNotFound:            http.StatusNotFound,
	CodeChildNotFoundOrForbidden: http.StatusNotFound,
	CodeInvalidVerification:      http.StatusBadRequest,
	CodeVerificationExpired:      http.StatusBadRequest,
	CodeEmailAlreadyVerified:     http.StatusBadRequest,
	CodeInvalidResetToken:        http.StatusBadRequest,
	CodeInvalidRefreshToken:      http.StatusForbidden,
	CodeAccessTokenMissing:       http.StatusUnauthorized,
	CodeInvalidAccessToken:       http.StatusUnauthorized,
	CodeForbidden:                http.StatusForbidden,
	CodeUsernameUnavailable:      http.StatusConflict,
	CodeInternal:                 http.StatusInternalServerError,
}

// New returns a coded error whose message is safe to show to clients.
func New(code, message string) error {
	return oops.Code(code).New(message)
}

const detailsKey = "errors"

// Validation returns a VALIDATION_FAILED error carrying one message per
// rejected field.
func Validation(messages []string) error {
	return oops.Code(CodeValidation).With(detailsKey, messages).New("Validation failed")
}

// Details returns the field messages attached by Validation, or nil.
func Details(err error) []string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	details, _ := oopsErr.Context()[detailsKey].([]string)
	return details
}

// Code returns the error code carried by err, or "" if it has none.
func Code(err error) string {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if code, ok := any(oopsErr.Code()).(string); ok {
		return code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return Code(err) == code
}

// Public is the client-facing view of an error.
type Public struct {
	Code    string
	Message string
	Status  int
}

// Resolve maps err to its client-facing status, code and message.
// Errors without a known code resolve to a generic 500.
func Resolve(err error) Public {
	code := Code(err)
	status, ok := statusByCode[code]
	if !ok || code == CodeInternal {
		return Public{
			Code:    CodeInternal,
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		}
	}

	message := err.Error()
	if oopsErr, ok := oops.AsOops(err); ok {
		message = oopsErr.Error()
	}
	return Public{Code: code, Message: message, Status: status}
}

// StatusFor returns the HTTP status registered for code.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
