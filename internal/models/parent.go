// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Parent is the adult account holder. Only Parents have an email address.
type Parent struct { //nolint:govet // fieldalignment: readability over optimization
	ID                       int64      `db:"id"`
	Email                    string     `db:"email"`
	PasswordHash             string     `db:"password_hash"`
	FirstName                string     `db:"first_name"`
	LastName                 string     `db:"last_name"`
	BirthDate                *time.Time `db:"birth_date"`
	PhoneNumber              *string    `db:"phone_number"`
	AddressPostal            *string    `db:"address_postal"`
	IsVerified               bool       `db:"is_verified"`
	VerificationToken        *string    `db:"verification_token"`
	VerificationTokenExpires *time.Time `db:"verification_token_expires"`
	ResetPasswordToken       *string    `db:"reset_password_token"`
	ResetPasswordExpires     *time.Time `db:"reset_password_expires"`
	Status                   bool       `db:"status"`
	CreatedAt                time.Time  `db:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at"`
}

// SafeParent is the outward representation of a Parent.
type SafeParent struct { //nolint:govet // fieldalignment: readability over optimization
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	BirthDate     *time.Time `json:"birthDate"`
	PhoneNumber   *string    `json:"phoneNumber"`
	AddressPostal *string    `json:"addressPostal"`
	IsVerified    bool       `json:"isVerified"`
	Status        bool       `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Sanitize strips the credential and every flow token from p.
func (p *Parent) Sanitize() SafeParent {
	return SafeParent{
		ID:            p.ID,
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		BirthDate:     p.BirthDate,
		PhoneNumber:   p.PhoneNumber,
		AddressPostal: p.AddressPostal,
		IsVerified:    p.IsVerified,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
