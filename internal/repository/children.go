// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/mainda/accounts/internal/models"
)

const childColumns = `id, username, password_hash, first_name, last_name, birth_date, gender,
	school_level, profile_picture_url, status, parent_id, created_at, updated_at`

// CreateChild inserts c and sets its ID. A taken username yields ErrDuplicate.
func (r *Repository) CreateChild(ctx context.Context, c *models.Child) error {
	const q = `INSERT INTO children
		(username, password_hash, first_name, last_name, birth_date, gender, school_level,
		 profile_picture_url, status, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(q),
		c.Username, c.PasswordHash, c.FirstName, c.LastName, c.BirthDate, c.Gender, c.SchoolLevel,
		c.ProfilePictureURL, c.Status, c.ParentID, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return wrapError(err)
}

// GetChildByID retrieves a child by ID.
func (r *Repository) GetChildByID(ctx context.Context, id int64) (*models.Child, error) {
	var c models.Child
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+childColumns+` FROM children WHERE id = ?`), id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

// GetChildByUsername retrieves a child by username.
func (r *Repository) GetChildByUsername(ctx context.Context, username string) (*models.Child, error) {
	var c models.Child
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+childColumns+` FROM children WHERE username = ?`), username)
	if err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

// ChildUsernameExists checks if a child with the given username exists.
func (r *Repository) ChildUsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT count(*) FROM children WHERE username = ?`), username)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListChildrenByParent returns a parent's children, oldest first.
func (r *Repository) ListChildrenByParent(ctx context.Context, parentID int64) ([]models.Child, error) {
	children := []models.Child{}
	err := r.db.SelectContext(ctx, &children,
		r.db.Rebind(`SELECT `+childColumns+` FROM children WHERE parent_id = ? ORDER BY id`), parentID)
	if err != nil {
		return nil, err
	}
	return children, nil
}

// UpdateChild writes the mutable fields of c. The row must belong to
// c.ParentID; parent_id itself is never written.
func (r *Repository) UpdateChild(ctx context.Context, c *models.Child) error {
	return r.execOne(ctx, `UPDATE children SET
		password_hash = ?, first_name = ?, last_name = ?, birth_date = ?, gender = ?,
		school_level = ?, status = ?, updated_at = ?
		WHERE id = ? AND parent_id = ?`,
		c.PasswordHash, c.FirstName, c.LastName, c.BirthDate, c.Gender,
		c.SchoolLevel, c.Status, c.UpdatedAt, c.ID, c.ParentID)
}

// UpdateChildProfilePicture sets the profile picture URL.
func (r *Repository) UpdateChildProfilePicture(ctx context.Context, id int64, url string, now time.Time) error {
	return r.execOne(ctx, `UPDATE children SET profile_picture_url = ?, updated_at = ? WHERE id = ?`,
		url, now, id)
}
