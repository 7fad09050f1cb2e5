// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

const (
	// VerificationTTL is how long an email verification token is valid.
	VerificationTTL = 24 * time.Hour
	// ResetTTL is how long a password reset token is valid.
	ResetTTL = time.Hour
)

// FlowToken is a freshly generated single-use token. Plaintext goes into the
// emailed link; only Hash is stored.
type FlowToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// NewFlowToken generates a random token that expires ttl from now.
func (s *Service) NewFlowToken(ttl time.Duration) (FlowToken, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return FlowToken{}, err
	}
	plaintext := id.String()
	return FlowToken{
		Plaintext: plaintext,
		Hash:      HashFlowToken(plaintext),
		ExpiresAt: s.clock.Now().Add(ttl),
	}, nil
}

// HashFlowToken returns the stored form of a flow token.
func HashFlowToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
