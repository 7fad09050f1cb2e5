// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/mainda/accounts/internal/apperr"
	authn "codeberg.org/mainda/accounts/internal/auth"
	"codeberg.org/mainda/accounts/internal/metrics"
	"codeberg.org/mainda/accounts/internal/services/token"
)

// Refresh exchanges a valid refresh token for a new token pair. The claims
// are trusted for the token's lifetime; the store is not consulted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (_ token.Pair, err error) {
	defer func() { metrics.AuthEvent("refresh", err) }()

	id, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		slog.Warn("refresh_failed", "reason", "invalid_refresh_token")
		return token.Pair{}, apperr.New(apperr.CodeInvalidRefreshToken, "Invalid or expired refresh token")
	}

	pair, err := s.tokens.IssuePair(id)
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	slog.Debug("refresh_success", "kind", id.Kind(), "id", id.PrincipalID())
	return pair, nil
}

// Logout is stateless: the caller clears the token cookies. A readable
// refresh token is only used to log who left.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	// TODO: record the refresh token's jti in a deny-list until it expires.
	var id authn.Identity
	if refreshToken != "" {
		id, _ = s.tokens.VerifyRefresh(refreshToken)
	}
	metrics.AuthEvent("logout", nil)
	if id == nil {
		slog.InfoContext(ctx, "logout")
		return
	}
	slog.InfoContext(ctx, "logout", "kind", id.Kind(), "id", id.PrincipalID())
}
