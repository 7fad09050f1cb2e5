// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Child is a login owned by exactly one Parent. ParentID never changes.
type Child struct { //nolint:govet // fieldalignment: readability over optimization
	ID                int64     `db:"id"`
	Username          string    `db:"username"`
	PasswordHash      string    `db:"password_hash"`
	FirstName         string    `db:"first_name"`
	LastName          string    `db:"last_name"`
	BirthDate         time.Time `db:"birth_date"`
	Gender            string    `db:"gender"`
	SchoolLevel       string    `db:"school_level"`
	ProfilePictureURL *string   `db:"profile_picture_url"`
	Status            bool      `db:"status"`
	ParentID          int64     `db:"parent_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// SafeChild is the outward representation of a Child.
type SafeChild struct { //nolint:govet // fieldalignment: readability over optimization
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	BirthDate         time.Time `json:"birthDate"`
	Gender            string    `json:"gender"`
	SchoolLevel       string    `json:"schoolLevel"`
	ProfilePictureURL *string   `json:"profilePictureUrl"`
	Status            bool      `json:"status"`
	ParentID          int64     `json:"parentId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Sanitize strips the credential from c.
func (c *Child) Sanitize() SafeChild {
	return SafeChild{
		ID:                c.ID,
		Username:          c.Username,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		BirthDate:         c.BirthDate,
		Gender:            c.Gender,
		SchoolLevel:       c.SchoolLevel,
		ProfilePictureURL: c.ProfilePictureURL,
		Status:            c.Status,
		ParentID:          c.ParentID,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// SanitizeChildren maps Sanitize over children.
func SanitizeChildren(children []Child) []SafeChild {
	out := make([]SafeChild, 0, len(children))
	for i := range children {
		out = append(out, children[i].Sanitize())
	}
	return out
}
