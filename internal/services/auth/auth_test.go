// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	"codeberg.org/mainda/accounts/internal/clock"
	"codeberg.org/mainda/accounts/internal/repository"
	"codeberg.org/mainda/accounts/internal/services/auth"
	"codeberg.org/mainda/accounts/internal/services/email"
	"codeberg.org/mainda/accounts/internal/services/token"
	"codeberg.org/mainda/accounts/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	svc    *auth.Service
	repo   *repository.Repository
	tokens *token.Service
	sender *testutil.RecordingSender
	clock  *clock.Mock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	clk := clock.NewMock(testutil.Epoch)

	tokens, err := token.NewService(token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "mainda-test",
	}, clk)
	require.NoError(t, err)

	sender := &testutil.RecordingSender{}
	mailer, err := email.NewService(sender, testutil.Links)
	require.NoError(t, err)

	return &env{
		svc:    auth.NewService(repo, testutil.FastHasher{}, tokens, mailer, clk),
		repo:   repo,
		tokens: tokens,
		sender: sender,
		clock:  clk,
	}
}

// lastToken returns the flow token from the most recent email.
func (e *env) lastToken(t *testing.T) string {
	t.Helper()
	msg, ok := e.sender.Last()
	require.True(t, ok, "expected an email")
	tok := testutil.TokenFrom(msg)
	require.NotEmpty(t, tok)
	return tok
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperr.Code(err), "error: %v", err)
}

var ctx = context.Background()

func ptr[T any](v T) *T { return &v }
