// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

// RegisterParentParams holds the parameters for parent registration.
type RegisterParentParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ParentLogin is the result of a successful parent login.
type ParentLogin struct {
	Parent models.SafeParent
	Tokens token.Pair
}

// ProfileParams holds the optional fields set by CompleteRegistration.
// Nil fields are left unchanged.
type ProfileParams struct {
	BirthDate     *time.Time
	PhoneNumber   *string
	AddressPostal *string
}

// RegisterParent creates an unverified, active parent and mails a
// verification link. A failed email does not undo the registration.
func (s *Service) RegisterParent(ctx context.Context, params RegisterParentParams) (_ models.SafeParent, err error) {
	defer func() { metrics.AuthEvent("parent_register", err) }()

	_, err = s.store.GetParentByEmail(ctx, params.Email)
	if err == nil {
		slog.Warn("parent_register_failed", "reason", "email_in_use")
		return models.SafeParent{}, errEmailInUse()
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.SafeParent{}, fmt.Errorf("failed to check existing parent: %w", err)
	}

	digest, err := s.hash(params.Password)
	if err != nil {
		return models.SafeParent{}, err
	}

	flow, err := s.tokens.NewFlowToken(token.VerificationTTL)
	if err != nil {
		return models.SafeParent{}, fmt.Errorf("failed to generate verification token: %w", err)
	}

	now := s.clock.Now()
	parent := &models.Parent{
		Email:                    params.Email,
		PasswordHash:             digest,
		FirstName:                params.FirstName,
		LastName:                 params.LastName,
		IsVerified:               false,
		VerificationToken:        &flow.Hash,
		VerificationTokenExpires: &flow.ExpiresAt,
		Status:                   true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	if err := s.store.CreateParent(ctx, parent); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.SafeParent{}, errEmailInUse()
		}
		return models.SafeParent{}, fmt.Errorf("failed to create parent: %w", err)
	}

	notify(ctx, email.KindVerification, func() error {
		return s.notifier.SendVerification(ctx, parent.Email, parent.FirstName, flow.Plaintext, email.ReasonRegistration)
	})

	slog.Info("parent_register_success", "parent_id", parent.ID)
	return parent.Sanitize(), nil
}

// LoginParent checks credentials and issues a token pair. Unknown email and
// wrong password fail identically.
func (s *Service) LoginParent(ctx context.Context, emailAddr, plain string) (_ ParentLogin, err error) {
	defer func() { metrics.AuthEvent("parent_login", err) }()

	invalid := apperr.New(apperr.CodeInvalidCredentials, "Invalid email or password")

	parent, err := s.store.GetParentByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			password.VerifyDummy(plain)
			slog.Warn("login_failed", "kind", authn.KindParent, "reason", "parent_not_found")
			return ParentLogin{}, invalid
		}
		return ParentLogin{}, fmt.Errorf("failed to get parent: %w", err)
	}

	if !s.hasher.Verify(plain, parent.PasswordHash) {
		slog.Warn("login_failed", "kind", authn.KindParent, "parent_id", parent.ID, "reason", "invalid_password")
		return ParentLogin{}, invalid
	}
	if !parent.IsVerified {
		return ParentLogin{}, errNotVerified()
	}
	if !parent.Status {
		return ParentLogin{}, errDeactivated()
	}

	pair, err := s.tokens.IssuePair(authn.ParentIdentityOf(parent))
	if err != nil {
		return ParentLogin{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	slog.Info("login_success", "kind", authn.KindParent, "parent_id", parent.ID)
	return ParentLogin{Parent: parent.Sanitize(), Tokens: pair}, nil
}

// GetParentProfile returns the sanitized parent.
func (s *Service) GetParentProfile(ctx context.Context, parentID int64) (models.SafeParent, error) {
	parent, err := s.loadParent(ctx, parentID)
	if err != nil {
		return models.SafeParent{}, err
	}
	return parent.Sanitize(), nil
}

// CompleteRegistration stores the optional profile fields. Calling it again
// with the same values changes nothing.
func (s *Service) CompleteRegistration(ctx context.Context, parentID int64, params ProfileParams) (_ models.SafeParent, err error) {
	defer func() { metrics.AuthEvent("complete_registration", err) }()

	err = s.store.UpdateParentProfile(ctx, parentID, params.BirthDate, params.PhoneNumber, params.AddressPostal, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.SafeParent{}, errParentNotFound()
		}
		return models.SafeParent{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetParentProfile(ctx, parentID)
}

// UpdateEmail moves the parent to newEmail, marks it unverified and mails a
// fresh verification link to the new address.
func (s *Service) UpdateEmail(ctx context.Context, parentID int64, newEmail string) (_ models.SafeParent, err error) {
	defer func() { metrics.AuthEvent("update_email", err) }()

	_, err = s.store.GetParentByEmail(ctx, newEmail)
	if err == nil {
		return models.SafeParent{}, errEmailInUse()
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.SafeParent{}, fmt.Errorf("failed to check existing parent: %w", err)
	}

	flow, err := s.tokens.NewFlowToken(token.VerificationTTL)
	if err != nil {
		return models.SafeParent{}, fmt.Errorf("failed to generate verification token: %w", err)
	}

	err = s.store.UpdateParentEmail(ctx, parentID, newEmail, flow.Hash, flow.ExpiresAt, s.clock.Now())
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return models.SafeParent{}, errEmailInUse()
	case errors.Is(err, repository.ErrNotFound):
		return models.SafeParent{}, errParentNotFound()
	case err != nil:
		return models.SafeParent{}, fmt.Errorf("failed to update email: %w", err)
	}

	parent, err := s.loadParent(ctx, parentID)
	if err != nil {
		return models.SafeParent{}, err
	}

	notify(ctx, email.KindVerification, func() error {
		return s.notifier.SendVerification(ctx, newEmail, parent.FirstName, flow.Plaintext, email.ReasonEmailChanged)
	})

	slog.Info("email_updated", "parent_id", parentID)
	return parent.Sanitize(), nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *Service) UpdatePassword(ctx context.Context, parentID int64, oldPassword, newPassword string) (err error) {
	defer func() { metrics.AuthEvent("update_password", err) }()

	parent, err := s.loadParent(ctx, parentID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, parent.PasswordHash) {
		return apperr.New(apperr.CodeInvalidCredentials, "Old password is incorrect")
	}

	digest, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.store.UpdateParentPassword(ctx, parentID, digest, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_updated", "parent_id", parentID)
	return nil
}

// DeleteAccount deactivates the parent after checking the password. The
// row and its children are kept; children keep their own status.
func (s *Service) DeleteAccount(ctx context.Context, parentID int64, plain string) (err error) {
	defer func() { metrics.AuthEvent("delete_account", err) }()

	parent, err := s.loadParent(ctx, parentID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(plain, parent.PasswordHash) {
		return apperr.New(apperr.CodeInvalidCredentials, "Invalid password")
	}

	if err := s.store.SetParentStatus(ctx, parentID, false, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to deactivate parent: %w", err)
	}

	slog.Info("account_deactivated", "parent_id", parentID)
	return nil
}

// ForgotPassword stores a one-hour reset token and mails the reset link.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) (err error) {
	defer func() { metrics.AuthEvent("forgot_password", err) }()

	parent, err := s.store.GetParentByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.CodeEmailNotFound, "Email not found")
		}
		return fmt.Errorf("failed to get parent: %w", err)
	}

	flow, err := s.tokens.NewFlowToken(token.ResetTTL)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.store.SetResetToken(ctx, parent.ID, flow.Hash, flow.ExpiresAt, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	notify(ctx, email.KindPasswordReset, func() error {
		return s.notifier.SendPasswordReset(ctx, parent.Email, flow.Plaintext)
	})

	slog.Info("password_reset_requested", "parent_id", parent.ID)
	return nil
}

// ResetPassword sets a new password for the holder of a current reset
// token. Matching, expiry and consumption happen in one store update, so
// wrong, expired and already used tokens are indistinguishable.
func (s *Service) ResetPassword(ctx context.Context, plaintextToken, newPassword string) (err error) {
	defer func() { metrics.AuthEvent("reset_password", err) }()

	digest, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	parentID, err := s.store.ConsumeResetToken(ctx, token.HashFlowToken(plaintextToken), digest, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.CodeInvalidResetToken, "Invalid or expired password reset token")
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	slog.Info("password_reset", "parent_id", parentID)
	return nil
}

// VerifyEmail consumes a verification token. Checks run in a fixed order:
// unknown token, already verified, expired.
func (s *Service) VerifyEmail(ctx context.Context, plaintextToken string) (err error) {
	defer func() { metrics.AuthEvent("verify_email", err) }()

	invalid := apperr.New(apperr.CodeInvalidVerification, "Invalid or expired verification token")
	tokenHash := token.HashFlowToken(plaintextToken)

	parent, err := s.store.GetParentByVerificationToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if parent.IsVerified {
		return apperr.New(apperr.CodeEmailAlreadyVerified, "Email is already verified")
	}

	now := s.clock.Now()
	if parent.VerificationTokenExpires == nil || !parent.VerificationTokenExpires.After(now) {
		return apperr.New(apperr.CodeVerificationExpired, "Verification token has expired")
	}

	if err := s.store.ConsumeVerificationToken(ctx, parent.ID, tokenHash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with a concurrent verify or a token rotation.
			return invalid
		}
		return fmt.Errorf("failed to verify email: %w", err)
	}

	slog.Info("email_verified", "parent_id", parent.ID)
	return nil
}

// ResendVerificationEmail rotates the verification token of an unverified
// parent and mails the new link.
func (s *Service) ResendVerificationEmail(ctx context.Context, emailAddr string) (err error) {
	defer func() { metrics.AuthEvent("resend_verification", err) }()

	parent, err := s.store.GetParentByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errParentNotFound()
		}
		return fmt.Errorf("failed to get parent: %w", err)
	}

	if parent.IsVerified {
		return apperr.New(apperr.CodeEmailAlreadyVerified, "Email is already verified")
	}

	flow, err := s.tokens.NewFlowToken(token.VerificationTTL)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	if err := s.store.SetVerificationToken(ctx, parent.ID, flow.Hash, flow.ExpiresAt, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	notify(ctx, email.KindVerification, func() error {
		return s.notifier.SendVerification(ctx, parent.Email, parent.FirstName, flow.Plaintext, email.ReasonResend)
	})

	slog.Info("verification_resent", "parent_id", parent.ID)
	return nil
}
