// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package password_test

import (
	"strings"
	"testing"

	"codeberg.org/mainda/accounts/internal/services/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := password.New()

	digest, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", digest)
	assert.True(t, h.Verify("correct horse", digest))
	assert.False(t, h.Verify("wrong horse", digest))
}

func TestHash_UsesFixedCost(t *testing.T) {
	digest, err := password.New().Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, password.Cost, cost)
}

func TestHash_Salted(t *testing.T) {
	h := password.New()

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestVerify_MalformedDigest(t *testing.T) {
	h := password.New()

	for _, digest := range []string{"", "not-a-hash", "$2a$10$short", strings.Repeat("x", 60)} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("anything", digest))
		})
	}
}

func TestHash_TooLong(t *testing.T) {
	_, err := password.New().Hash(strings.Repeat("a", password.MaxLength+1))
	assert.ErrorIs(t, err, password.ErrTooLong)

	_, err = password.New().Hash(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, password.ErrTooLong, "limit is in bytes")
}

func TestVerifyDummy(t *testing.T) {
	assert.NotPanics(t, func() {
		password.VerifyDummy("whatever")
	})
}
