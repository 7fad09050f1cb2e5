// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"errors"
	"strconv"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	"codeberg.org/mainda/accounts/internal/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records request counts and latency per route template.
// Unmatched paths are grouped under "unmatched" to bound cardinality.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" || route == "/*" {
				route = "unmatched"
			}
			if route == "/metrics" {
				return err
			}

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}

			metrics.ObserveHTTP(c.Request().Method, route, strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}

// statusOf predicts the status the error handler will send for err.
func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apperr.Resolve(err).Status
}
