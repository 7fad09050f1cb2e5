// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides the echo middleware shared by all routes.
package middleware

import (
	"log/slog"
	"strings"

	"codeberg.org/mainda/accounts/internal/apperr"
	"codeberg.org/mainda/accounts/internal/auth"
	"codeberg.org/mainda/accounts/internal/ctxkeys"
	"github.com/labstack/echo/v4"
)

// AccessTokenCookie is the cookie holding the access token.
const AccessTokenCookie = "accessToken"

// TokenVerifier checks an access token and returns its principal.
type TokenVerifier interface {
	VerifyAccess(token string) (auth.Identity, error)
}

// Authenticate resolves the caller from the access token cookie, falling back
// to an Authorization: Bearer header, and stores the principal on the request
// context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := accessToken(c)
			if token == "" {
				return apperr.New(apperr.CodeAccessTokenMissing, "Access token is missing")
			}

			id, err := verifier.VerifyAccess(token)
			if err != nil {
				slog.DebugContext(c.Request().Context(), "access_denied", "path", c.Path(), "reason", "invalid_access_token")
				return apperr.New(apperr.CodeInvalidAccessToken, "Invalid or expired access token")
			}

			ctx := auth.WithIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(ctxkeys.IdentityKey, id)
			return next(c)
		}
	}
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireParent rejects principals that are not parents.
func RequireParent(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.GetParent(c.Request().Context()); !ok {
			return apperr.New(apperr.CodeForbidden, "Access restricted to parents")
		}
		return next(c)
	}
}

// RequireChild rejects principals that are not children.
func RequireChild(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.GetChild(c.Request().Context()); !ok {
			return apperr.New(apperr.CodeForbidden, "Access restricted to children")
		}
		return next(c)
	}
}
