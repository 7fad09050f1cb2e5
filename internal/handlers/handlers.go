// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the JSON HTTP API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	authsvc "codeberg.org/mainda/accounts/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CookieConfig controls the token cookies.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	db      Pinger
	auth    *authsvc.Service
	cookies CookieConfig
}

// New creates a new Handlers instance.
func New(db Pinger, svc *authsvc.Service, cookies CookieConfig) *Handlers {
	return &Handlers{db: db, auth: svc, cookies: cookies}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health_check_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
