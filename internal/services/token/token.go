// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies bearer tokens (access and refresh JWTs)
// and the single-use flow tokens used for email verification and password reset.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"codeberg.org/mainda/accounts/internal/auth"
	"codeberg.org/mainda/accounts/internal/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every bearer token that fails verification,
// whatever the cause.
var ErrInvalidToken = errors.New("invalid or expired token")

// Token audiences. Access and refresh tokens are never interchangeable.
const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// Config holds the secrets and lifetimes for bearer tokens.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Pair is an access token and its refresh token.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// claims is the JWT payload. Kind is the principal discriminator; parents
// carry Email and children carry Username.
type claims struct {
	Kind      auth.Kind `json:"kind"`
	ID        int64     `json:"id"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies bearer tokens.
type Service struct {
	cfg   Config
	clock clock.Clock
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config, clk clock.Clock) (*Service, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{cfg: cfg, clock: clk}, nil
}

// IssueAccess signs a short-lived access token for id.
func (s *Service) IssueAccess(id auth.Identity) (string, error) {
	return s.issue(id, audienceAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token for id.
func (s *Service) IssueRefresh(id auth.Identity) (string, error) {
	return s.issue(id, audienceRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// IssuePair signs an access and a refresh token for id.
func (s *Service) IssuePair(id auth.Identity) (Pair, error) {
	access, err := s.IssueAccess(id)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.IssueRefresh(id)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks an access token and returns its principal.
func (s *Service) VerifyAccess(tokenStr string) (auth.Identity, error) {
	return s.verify(tokenStr, audienceAccess, s.cfg.AccessSecret)
}

// VerifyRefresh checks a refresh token and returns its principal.
func (s *Service) VerifyRefresh(tokenStr string) (auth.Identity, error) {
	return s.verify(tokenStr, audienceRefresh, s.cfg.RefreshSecret)
}

func (s *Service) issue(id auth.Identity, audience string, secret []byte, ttl time.Duration) (string, error) {
	c, err := claimsFor(id)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   strconv.FormatInt(id.PrincipalID(), 10),
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", audience, err)
	}
	return signed, nil
}

func claimsFor(id auth.Identity) (claims, error) {
	switch p := id.(type) {
	case auth.ParentIdentity:
		return claims{Kind: auth.KindParent, ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName}, nil
	case auth.ChildIdentity:
		return claims{Kind: auth.KindChild, ID: p.ID, Username: p.Username, FirstName: p.FirstName, LastName: p.LastName}, nil
	default:
		return claims{}, fmt.Errorf("unsupported identity %T", id)
	}
}

func (s *Service) verify(tokenStr, audience string, secret []byte) (auth.Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)

	var c claims
	_, err := parser.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		slog.Debug("token_rejected", "audience", audience, "reason", rejectReason(err))
		return nil, ErrInvalidToken
	}

	id, err := identityFrom(&c)
	if err != nil {
		slog.Debug("token_rejected", "audience", audience, "reason", err.Error())
		return nil, ErrInvalidToken
	}
	return id, nil
}

// identityFrom rebuilds the principal and rejects claims whose kind does not
// match their shape.
func identityFrom(c *claims) (auth.Identity, error) {
	if c.ID <= 0 || c.Subject != strconv.FormatInt(c.ID, 10) {
		return nil, errors.New("subject mismatch")
	}
	switch c.Kind {
	case auth.KindParent:
		if c.Email == "" || c.Username != "" {
			return nil, errors.New("parent claims without email")
		}
		return auth.ParentIdentity{ID: c.ID, Email: c.Email, FirstName: c.FirstName, LastName: c.LastName}, nil
	case auth.KindChild:
		if c.Username == "" || c.Email != "" {
			return nil, errors.New("child claims without username")
		}
		return auth.ChildIdentity{ID: c.ID, Username: c.Username, FirstName: c.FirstName, LastName: c.LastName}, nil
	default:
		return nil, fmt.Errorf("unknown principal kind %q", c.Kind)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "wrong_audience"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "wrong_issuer"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return err.Error()
	}
}
