// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	authn "codeberg.org/mainda/accounts/internal/auth"
	"codeberg.org/mainda/accounts/internal/metrics"
	"codeberg.org/mainda/accounts/internal/models"
	"codeberg.org/mainda/accounts/internal/repository"
	"codeberg.org/mainda/accounts/internal/services/email"
	"codeberg.org/mainda/accounts/internal/services/password"
	"codeberg.org/mainda/accounts/internal/services/token"
)

// MaxUsernameSuffix is the highest numeric suffix tried when a derived
// username is taken.
const MaxUsernameSuffix = 99

// RegisterChildParams holds the parameters for registering a child.
type RegisterChildParams struct {
	FirstName   string
	LastName    string
	Password    string
	BirthDate   time.Time
	Gender      string
	SchoolLevel string
}

// ChildPatch lists the child fields a parent may change. Nil fields are left
// unchanged; Password is re-hashed.
type ChildPatch struct {
	FirstName   *string
	LastName    *string
	BirthDate   *time.Time
	Gender      *string
	SchoolLevel *string
	Status      *bool
	Password    *string
}

// ChildLogin is the result of a successful child login.
type ChildLogin struct {
	Child  models.SafeChild
	Tokens token.Pair
}

func errChildNotFound() error {
	return apperr.New(apperr.CodeChildNotFound, "Child not found")
}

func errChildNotOwned() error {
	return apperr.New(apperr.CodeChildNotFoundOrForbidden, "Child not found or unauthorized")
}

// DeriveUsername builds the default login handle of a child: the lowercased
// first name with spaces turned into dashes, an underscore, and the
// lowercased local part of the parent's email.
func DeriveUsername(firstName, parentEmail string) string {
	first := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(firstName)), " ", "-")
	local, _, _ := strings.Cut(strings.ToLower(parentEmail), "@")
	return first + "_" + local
}

// RegisterChild creates a child owned by parentID. The parent must exist and
// be verified and active. A taken username is retried with the suffixes
// _1 to _99.
func (s *Service) RegisterChild(ctx context.Context, parentID int64, params RegisterChildParams) (_ models.SafeChild, err error) {
	defer func() { metrics.AuthEvent("child_register", err) }()

	parent, err := s.loadParent(ctx, parentID)
	if err != nil {
		return models.SafeChild{}, err
	}
	if !parent.IsVerified {
		return models.SafeChild{}, errNotVerified()
	}
	if !parent.Status {
		return models.SafeChild{}, errDeactivated()
	}

	digest, err := s.hash(params.Password)
	if err != nil {
		return models.SafeChild{}, err
	}

	now := s.clock.Now()
	child := &models.Child{
		PasswordHash: digest,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		BirthDate:    params.BirthDate,
		Gender:       params.Gender,
		SchoolLevel:  params.SchoolLevel,
		Status:       true,
		ParentID:     parent.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	base := DeriveUsername(params.FirstName, parent.Email)
	for i := 0; i <= MaxUsernameSuffix; i++ {
		child.Username = base
		if i > 0 {
			child.Username = base + "_" + strconv.Itoa(i)
		}

		taken, err := s.store.ChildUsernameExists(ctx, child.Username)
		if err != nil {
			return models.SafeChild{}, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			continue
		}

		err = s.store.CreateChild(ctx, child)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return models.SafeChild{}, fmt.Errorf("failed to create child: %w", err)
		}

		slog.Info("child_register_success", "parent_id", parent.ID, "child_id", child.ID)
		return child.Sanitize(), nil
	}

	slog.Warn("child_register_failed", "parent_id", parent.ID, "reason", "username_exhausted")
	return models.SafeChild{}, apperr.New(apperr.CodeUsernameUnavailable, "Could not find an available username")
}

// loadOwnedChild fetches a child and checks that who may act on it. Missing
// and foreign children produce the same error.
func (s *Service) loadOwnedChild(ctx context.Context, who authn.Identity, childID int64) (*models.Child, error) {
	child, err := s.store.GetChildByID(ctx, childID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if err != nil || !authn.Owns(who, child) {
		return nil, errChildNotOwned()
	}
	return child, nil
}

// GetChild returns one of the parent's children.
func (s *Service) GetChild(ctx context.Context, parent authn.ParentIdentity, childID int64) (models.SafeChild, error) {
	child, err := s.loadOwnedChild(ctx, parent, childID)
	if err != nil {
		return models.SafeChild{}, err
	}
	return child.Sanitize(), nil
}

// ListChildren returns the parent's children, oldest first.
func (s *Service) ListChildren(ctx context.Context, parentID int64) ([]models.SafeChild, error) {
	children, err := s.store.ListChildrenByParent(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return models.SanitizeChildren(children), nil
}

// UpdateChild applies patch to one of the parent's children. The owning
// parent never changes.
func (s *Service) UpdateChild(ctx context.Context, parent authn.ParentIdentity, childID int64, patch ChildPatch) (_ models.SafeChild, err error) {
	defer func() { metrics.AuthEvent("child_update", err) }()

	child, err := s.loadOwnedChild(ctx, parent, childID)
	if err != nil {
		return models.SafeChild{}, err
	}

	if patch.FirstName != nil {
		child.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		child.LastName = *patch.LastName
	}
	if patch.BirthDate != nil {
		child.BirthDate = *patch.BirthDate
	}
	if patch.Gender != nil {
		child.Gender = *patch.Gender
	}
	if patch.SchoolLevel != nil {
		child.SchoolLevel = *patch.SchoolLevel
	}
	if patch.Status != nil {
		child.Status = *patch.Status
	}
	if patch.Password != nil {
		digest, err := s.hash(*patch.Password)
		if err != nil {
			return models.SafeChild{}, err
		}
		child.PasswordHash = digest
	}
	child.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateChild(ctx, child); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.SafeChild{}, errChildNotOwned()
		}
		return models.SafeChild{}, fmt.Errorf("failed to update child: %w", err)
	}

	slog.Info("child_updated", "parent_id", parent.ID, "child_id", child.ID)
	return child.Sanitize(), nil
}

// LoginChild checks a child's credentials and issues a token pair. Children
// have no email verification; only deactivation blocks them.
func (s *Service) LoginChild(ctx context.Context, username, plain string) (_ ChildLogin, err error) {
	defer func() { metrics.AuthEvent("child_login", err) }()

	invalid := apperr.New(apperr.CodeInvalidCredentials, "Invalid username or password")

	child, err := s.store.GetChildByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			password.VerifyDummy(plain)
			slog.Warn("login_failed", "kind", authn.KindChild, "reason", "child_not_found")
			return ChildLogin{}, invalid
		}
		return ChildLogin{}, fmt.Errorf("failed to get child: %w", err)
	}

	if !s.hasher.Verify(plain, child.PasswordHash) {
		slog.Warn("login_failed", "kind", authn.KindChild, "child_id", child.ID, "reason", "invalid_password")
		return ChildLogin{}, invalid
	}
	if !child.Status {
		return ChildLogin{}, errDeactivated()
	}

	pair, err := s.tokens.IssuePair(authn.ChildIdentityOf(child))
	if err != nil {
		return ChildLogin{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	slog.Info("login_success", "kind", authn.KindChild, "child_id", child.ID)
	return ChildLogin{Child: child.Sanitize(), Tokens: pair}, nil
}

// GetChildProfile returns the authenticated child's own record.
func (s *Service) GetChildProfile(ctx context.Context, who authn.ChildIdentity) (models.SafeChild, error) {
	child, err := s.loadSelf(ctx, who)
	if err != nil {
		return models.SafeChild{}, err
	}
	return child.Sanitize(), nil
}

// ChangeProfilePicture sets the authenticated child's picture URL.
func (s *Service) ChangeProfilePicture(ctx context.Context, who authn.ChildIdentity, url string) (_ models.SafeChild, err error) {
	defer func() { metrics.AuthEvent("child_profile_picture", err) }()

	child, err := s.loadSelf(ctx, who)
	if err != nil {
		return models.SafeChild{}, err
	}

	now := s.clock.Now()
	if err := s.store.UpdateChildProfilePicture(ctx, child.ID, url, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.SafeChild{}, errChildNotFound()
		}
		return models.SafeChild{}, fmt.Errorf("failed to update profile picture: %w", err)
	}

	child.ProfilePictureURL = &url
	child.UpdatedAt = now
	return child.Sanitize(), nil
}

func (s *Service) loadSelf(ctx context.Context, who authn.ChildIdentity) (*models.Child, error) {
	child, err := s.store.GetChildByID(ctx, who.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if err != nil || !authn.Owns(who, child) {
		return nil, errChildNotFound()
	}
	return child, nil
}

// ForgotChildPassword tells the child's parent that a new password is
// needed. Children have no email of their own.
func (s *Service) ForgotChildPassword(ctx context.Context, username string) (err error) {
	defer func() { metrics.AuthEvent("child_forgot_password", err) }()

	child, err := s.store.GetChildByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errChildNotFound()
		}
		return fmt.Errorf("failed to get child: %w", err)
	}

	parent, err := s.loadParent(ctx, child.ParentID)
	if err != nil {
		return err
	}

	notify(ctx, email.KindChildResetRequest, func() error {
		return s.notifier.SendChildResetRequest(ctx, parent.Email, child.FirstName)
	})

	slog.Info("child_reset_requested", "child_id", child.ID, "parent_id", parent.ID)
	return nil
}
