// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements the parent and child account flows: registration,
// login, token refresh, email verification, password reset and the
// parent-scoped management of children.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	"codeberg.org/mainda/accounts/internal/clock"
	"codeberg.org/mainda/accounts/internal/models"
	"codeberg.org/mainda/accounts/internal/repository"
	"codeberg.org/mainda/accounts/internal/services/email"
	"codeberg.org/mainda/accounts/internal/services/password"
	"codeberg.org/mainda/accounts/internal/services/token"
)

// Store is the persistence the flows need. *repository.Repository satisfies it.
type Store interface {
	CreateParent(ctx context.Context, p *models.Parent) error
	GetParentByID(ctx context.Context, id int64) (*models.Parent, error)
	GetParentByEmail(ctx context.Context, email string) (*models.Parent, error)
	GetParentByVerificationToken(ctx context.Context, tokenHash string) (*models.Parent, error)
	UpdateParentProfile(ctx context.Context, id int64, birthDate *time.Time, phoneNumber, addressPostal *string, now time.Time) error
	UpdateParentEmail(ctx context.Context, id int64, email, tokenHash string, expires, now time.Time) error
	UpdateParentPassword(ctx context.Context, id int64, passwordHash string, now time.Time) error
	SetParentStatus(ctx context.Context, id int64, active bool, now time.Time) error
	SetVerificationToken(ctx context.Context, id int64, tokenHash string, expires, now time.Time) error
	ConsumeVerificationToken(ctx context.Context, id int64, tokenHash string, now time.Time) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expires, now time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (int64, error)

	CreateChild(ctx context.Context, c *models.Child) error
	GetChildByID(ctx context.Context, id int64) (*models.Child, error)
	GetChildByUsername(ctx context.Context, username string) (*models.Child, error)
	ChildUsernameExists(ctx context.Context, username string) (bool, error)
	ListChildrenByParent(ctx context.Context, parentID int64) ([]models.Child, error)
	UpdateChild(ctx context.Context, c *models.Child) error
	UpdateChildProfilePicture(ctx context.Context, id int64, url string, now time.Time) error
}

// Notifier sends account emails. *email.Service satisfies it.
type Notifier interface {
	SendVerification(ctx context.Context, to, firstName, token string, reason email.Reason) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendChildResetRequest(ctx context.Context, parentEmail, childFirstName string) error
}

var _ Store = (*repository.Repository)(nil)
var _ Notifier = (*email.Service)(nil)

// Service runs the account flows.
type Service struct {
	store    Store
	hasher   password.Hasher
	tokens   *token.Service
	notifier Notifier
	clock    clock.Clock
}

// NewService wires the flows to their collaborators. A nil clock means the
// wall clock.
func NewService(store Store, hasher password.Hasher, tokens *token.Service, notifier Notifier, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		clock:    clk,
	}
}

func errParentNotFound() error {
	return apperr.New(apperr.CodeParentNotFound, "Parent not found")
}

func errEmailInUse() error {
	return apperr.New(apperr.CodeEmailInUse, "Email already in use")
}

func errDeactivated() error {
	return apperr.New(apperr.CodeAccountDeactivated, "Account is deactivated")
}

func errNotVerified() error {
	return apperr.New(apperr.CodeEmailNotVerified, "Email not verified")
}

// notify runs a best-effort delivery. Failures are logged, never returned.
func notify(ctx context.Context, kind string, send func() error) {
	if err := send(); err != nil {
		slog.WarnContext(ctx, "notify_failed", "kind", kind, "error", err)
	}
}

// loadParent fetches a parent, mapping a missing row to PARENT_NOT_FOUND.
func (s *Service) loadParent(ctx context.Context, id int64) (*models.Parent, error) {
	p, err := s.store.GetParentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errParentNotFound()
		}
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	return p, nil
}

func (s *Service) hash(plain string) (string, error) {
	digest, err := s.hasher.Hash(plain)
	if errors.Is(err, password.ErrTooLong) {
		return "", apperr.Validation([]string{fmt.Sprintf("Password must be at most %d bytes long", password.MaxLength)})
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return digest, nil
}
