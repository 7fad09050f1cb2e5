// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	authn "codeberg.org/mainda/accounts/internal/auth"
	"codeberg.org/mainda/accounts/internal/middleware"
	"codeberg.org/mainda/accounts/internal/services/token"
	"github.com/labstack/echo/v4"
)

// RefreshTokenCookie is the cookie holding the refresh token.
const RefreshTokenCookie = "refreshToken"

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation([]string{"Invalid request body"})
	}
	return c.Validate(req)
}

func (h *Handlers) setTokenCookies(c echo.Context, pair token.Pair) {
	c.SetCookie(h.cookie(middleware.AccessTokenCookie, pair.AccessToken, h.cookies.AccessTTL))
	c.SetCookie(h.cookie(RefreshTokenCookie, pair.RefreshToken, h.cookies.RefreshTTL))
}

func (h *Handlers) clearTokenCookies(c echo.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		cookie := h.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		c.SetCookie(cookie)
	}
}

func (h *Handlers) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func currentParent(c echo.Context) (authn.ParentIdentity, error) {
	p, ok := authn.GetParent(c.Request().Context())
	if !ok {
		return authn.ParentIdentity{}, apperr.New(apperr.CodeForbidden, "Access restricted to parents")
	}
	return p, nil
}

func currentChild(c echo.Context) (authn.ChildIdentity, error) {
	ch, ok := authn.GetChild(c.Request().Context())
	if !ok {
		return authn.ChildIdentity{}, apperr.New(apperr.CodeForbidden, "Access restricted to children")
	}
	return ch, nil
}

func childIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("childId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation([]string{"Invalid child id"})
	}
	return id, nil
}

func message(msg string) echo.Map {
	return echo.Map{"message": msg}
}
