// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/mainda/accounts/internal/apperr"
	"github.com/labstack/echo/v4"
)

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Message    string   `json:"message"`
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Code       string   `json:"code"`
	Errors     []string `json:"errors,omitempty"`
}

// ErrorHandler renders errors as JSON. Coded errors keep their message;
// anything else becomes a generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	body := errorBody{Success: false}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		body.StatusCode = he.Code
		body.Code = codeForStatus(he.Code)
		body.Message = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok && msg != "" {
			body.Message = msg
		}
	} else {
		pub := apperr.Resolve(err)
		body.StatusCode = pub.Status
		body.Code = pub.Code
		body.Message = pub.Message
		body.Errors = apperr.Details(err)
	}

	if body.StatusCode >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request_failed",
			"method", c.Request().Method,
			"route", c.Path(),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(body.StatusCode)
	} else {
		err = c.JSON(body.StatusCode, body)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

// codeForStatus names transport-level failures raised by echo itself.
func codeForStatus(status int) string {
	if status >= http.StatusInternalServerError {
		return apperr.CodeInternal
	}
	text := http.StatusText(status)
	if text == "" {
		return fmt.Sprintf("HTTP_%d", status)
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
