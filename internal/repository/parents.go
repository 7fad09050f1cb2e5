// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/mainda/accounts/internal/models"
)

const parentColumns = `id, email, password_hash, first_name, last_name, birth_date, phone_number,
	address_postal, is_verified, verification_token, verification_token_expires,
	reset_password_token, reset_password_expires, status, created_at, updated_at`

// CreateParent inserts p and sets its ID. A taken email yields ErrDuplicate.
func (r *Repository) CreateParent(ctx context.Context, p *models.Parent) error {
	const q = `INSERT INTO parents
		(email, password_hash, first_name, last_name, is_verified, verification_token,
		 verification_token_expires, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(q),
		p.Email, p.PasswordHash, p.FirstName, p.LastName, p.IsVerified, p.VerificationToken,
		p.VerificationTokenExpires, p.Status, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return wrapError(err)
}

// GetParentByID retrieves a parent by ID.
func (r *Repository) GetParentByID(ctx context.Context, id int64) (*models.Parent, error) {
	return r.getParent(ctx, `SELECT `+parentColumns+` FROM parents WHERE id = ?`, id)
}

// GetParentByEmail retrieves a parent by email address.
func (r *Repository) GetParentByEmail(ctx context.Context, email string) (*models.Parent, error) {
	return r.getParent(ctx, `SELECT `+parentColumns+` FROM parents WHERE email = ?`, email)
}

// GetParentByVerificationToken retrieves the parent holding a verification token hash.
func (r *Repository) GetParentByVerificationToken(ctx context.Context, tokenHash string) (*models.Parent, error) {
	return r.getParent(ctx, `SELECT `+parentColumns+` FROM parents WHERE verification_token = ?`, tokenHash)
}

func (r *Repository) getParent(ctx context.Context, query string, arg any) (*models.Parent, error) {
	var p models.Parent
	if err := r.db.GetContext(ctx, &p, r.db.Rebind(query), arg); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// UpdateParentProfile sets the optional profile fields that are non-nil.
func (r *Repository) UpdateParentProfile(ctx context.Context, id int64, birthDate *time.Time, phoneNumber, addressPostal *string, now time.Time) error {
	return r.execOne(ctx, `UPDATE parents SET
		birth_date = COALESCE(?, birth_date),
		phone_number = COALESCE(?, phone_number),
		address_postal = COALESCE(?, address_postal),
		updated_at = ?
		WHERE id = ?`,
		birthDate, phoneNumber, addressPostal, now, id)
}

// UpdateParentEmail changes the email, marks the parent unverified and stores
// a fresh verification token. A taken email yields ErrDuplicate.
func (r *Repository) UpdateParentEmail(ctx context.Context, id int64, email, tokenHash string, expires, now time.Time) error {
	return r.execOne(ctx, `UPDATE parents SET
		email = ?, is_verified = ?, verification_token = ?, verification_token_expires = ?, updated_at = ?
		WHERE id = ?`,
		email, false, tokenHash, expires, now, id)
}

// UpdateParentPassword replaces the password hash.
func (r *Repository) UpdateParentPassword(ctx context.Context, id int64, passwordHash string, now time.Time) error {
	return r.execOne(ctx, `UPDATE parents SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now, id)
}

// SetParentStatus activates or deactivates a parent.
func (r *Repository) SetParentStatus(ctx context.Context, id int64, active bool, now time.Time) error {
	return r.execOne(ctx, `UPDATE parents SET status = ?, updated_at = ? WHERE id = ?`,
		active, now, id)
}

// SetVerificationToken stores a new verification token hash and expiry.
func (r *Repository) SetVerificationToken(ctx context.Context, id int64, tokenHash string, expires, now time.Time) error {
	return r.execOne(ctx, `UPDATE parents SET
		verification_token = ?, verification_token_expires = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expires, now, id)
}

// ConsumeVerificationToken marks the parent verified and clears the token in
// one statement. It only matches while the token is current, unexpired and
// the parent is still unverified; otherwise it returns ErrNotFound.
func (r *Repository) ConsumeVerificationToken(ctx context.Context, id int64, tokenHash string, now time.Time) error {
	return r.execOne(ctx, `UPDATE parents SET
		is_verified = ?, verification_token = NULL, verification_token_expires = NULL, updated_at = ?
		WHERE id = ? AND verification_token = ? AND verification_token_expires > ? AND is_verified = ?`,
		true, now, id, tokenHash, now, false)
}

// SetResetToken stores a new password-reset token hash and expiry.
func (r *Repository) SetResetToken(ctx context.Context, id int64, tokenHash string, expires, now time.Time) error {
	return r.execOne(ctx, `UPDATE parents SET
		reset_password_token = ?, reset_password_expires = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expires, now, id)
}

// ConsumeResetToken sets a new password for the parent holding an unexpired
// reset token and clears the token in the same statement. It returns the
// parent's ID, or ErrNotFound when no current token matches.
func (r *Repository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (int64, error) {
	const q = `UPDATE parents SET
		password_hash = ?, reset_password_token = NULL, reset_password_expires = NULL, updated_at = ?
		WHERE reset_password_token = ? AND reset_password_expires > ?
		RETURNING id`

	var id int64
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(q), passwordHash, now, tokenHash, now).Scan(&id); err != nil {
		return 0, wrapError(err)
	}
	return id, nil
}
