// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password hashes and verifies account passwords.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for every hash.
const Cost = 10

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

// ErrTooLong is returned by Hash for passwords over MaxLength bytes.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// Hasher hashes passwords and checks them against stored digests.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// Bcrypt is a Hasher backed by bcrypt with a fixed cost.
type Bcrypt struct {
	cost int
}

// New returns a Bcrypt hasher using Cost.
func New() *Bcrypt {
	return &Bcrypt{cost: Cost}
}

// Hash returns a salted bcrypt digest of plain.
func (b *Bcrypt) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches digest. A malformed digest never matches.
func (b *Bcrypt) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// dummyDigest is compared against when no account exists, so that lookups
// of unknown accounts cost about as much as a wrong password.
var dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), Cost)

// VerifyDummy burns one comparison against a fixed digest.
func VerifyDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyDigest, []byte(plain))
}
