// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mainda/accounts/internal/repository"
	"codeberg.org/mainda/accounts/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateParent(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	p := testutil.NewTestParent(t, repo, "a@x.com")

	assert.NotZero(t, p.ID)

	got, err := repo.GetParentByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.True(t, got.IsVerified)
	assert.True(t, got.Status)
	assert.Nil(t, got.BirthDate)
	assert.Nil(t, got.VerificationToken)
	assert.True(t, testutil.Epoch.Equal(got.CreatedAt))
}

func TestCreateParent_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	first := testutil.NewTestParent(t, repo, "a@x.com")

	dup := *first
	dup.ID = 0
	err := repo.CreateParent(context.Background(), &dup)

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestGetParent_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.GetParentByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetParentByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetParentByVerificationToken(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetParentByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	p := testutil.NewTestParent(t, repo, "a@x.com")

	got, err := repo.GetParentByEmail(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestUpdateParentProfile_OnlyNonNil(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestParent(t, repo, "a@x.com")
	birth := time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC)
	now := testutil.Epoch.Add(time.Hour)

	require.NoError(t, repo.UpdateParentProfile(ctx, p.ID, &birth, ptr("0123456789"), ptr("12345 Town"), now))
	require.NoError(t, repo.UpdateParentProfile(ctx, p.ID, nil, ptr("9876543210"), nil, now))

	got, err := repo.GetParentByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BirthDate)
	assert.True(t, birth.Equal(*got.BirthDate))
	assert.Equal(t, "9876543210", *got.PhoneNumber)
	assert.Equal(t, "12345 Town", *got.AddressPostal)
	assert.True(t, now.Equal(got.UpdatedAt))
}

func TestUpdateParentProfile_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.UpdateParentProfile(context.Background(), 42, nil, nil, nil, testutil.Epoch)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateParentEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestParent(t, repo, "a@x.com")
	expires := testutil.Epoch.Add(24 * time.Hour)

	require.NoError(t, repo.UpdateParentEmail(ctx, p.ID, "b@x.com", "hash", expires, testutil.Epoch))

	got, err := repo.GetParentByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", got.Email)
	assert.False(t, got.IsVerified)
	assert.Equal(t, "hash", *got.VerificationToken)
	assert.True(t, expires.Equal(*got.VerificationTokenExpires))
}

func TestUpdateParentEmail_Duplicate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	testutil.NewTestParent(t, repo, "taken@x.com")
	p := testutil.NewTestParent(t, repo, "a@x.com")

	err := repo.UpdateParentEmail(context.Background(), p.ID, "taken@x.com", "h", testutil.Epoch, testutil.Epoch)

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUpdateParentPasswordAndStatus(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestParent(t, repo, "a@x.com")

	require.NoError(t, repo.UpdateParentPassword(ctx, p.ID, "new-digest", testutil.Epoch))
	require.NoError(t, repo.SetParentStatus(ctx, p.ID, false, testutil.Epoch))

	got, err := repo.GetParentByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-digest", got.PasswordHash)
	assert.False(t, got.Status)
}

func TestConsumeVerificationToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestParent(t, repo, "a@x.com", testutil.Unverified())
	expires := testutil.Epoch.Add(24 * time.Hour)
	require.NoError(t, repo.SetVerificationToken(ctx, p.ID, "vhash", expires, testutil.Epoch))

	found, err := repo.GetParentByVerificationToken(ctx, "vhash")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	require.NoError(t, repo.ConsumeVerificationToken(ctx, p.ID, "vhash", testutil.Epoch.Add(time.Hour)))

	got, err := repo.GetParentByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.VerificationToken)
	assert.Nil(t, got.VerificationTokenExpires)

	err = repo.ConsumeVerificationToken(ctx, p.ID, "vhash", testutil.Epoch.Add(time.Hour))
	assert.ErrorIs(t, err, repository.ErrNotFound, "token is single-use")
}

func TestConsumeVerificationToken_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestParent(t, repo, "a@x.com", testutil.Unverified())
	expires := testutil.Epoch.Add(24 * time.Hour)
	require.NoError(t, repo.SetVerificationToken(ctx, p.ID, "vhash", expires, testutil.Epoch))

	err := repo.ConsumeVerificationToken(ctx, p.ID, "vhash", expires.Add(time.Second))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetParentByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsVerified)
	assert.NotNil(t, got.VerificationToken, "expired tokens stay in place")
}

func TestConsumeResetToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestParent(t, repo, "a@x.com")
	require.NoError(t, repo.SetResetToken(ctx, p.ID, "rhash", testutil.Epoch.Add(time.Hour), testutil.Epoch))

	id, err := repo.ConsumeResetToken(ctx, "rhash", "fresh-digest", testutil.Epoch.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)

	got, err := repo.GetParentByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-digest", got.PasswordHash)
	assert.Nil(t, got.ResetPasswordToken)
	assert.Nil(t, got.ResetPasswordExpires)

	_, err = repo.ConsumeResetToken(ctx, "rhash", "again", testutil.Epoch.Add(31*time.Minute))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeResetToken_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestParent(t, repo, "a@x.com")
	require.NoError(t, repo.SetResetToken(ctx, p.ID, "rhash", testutil.Epoch.Add(time.Hour), testutil.Epoch))

	_, err := repo.ConsumeResetToken(ctx, "rhash", "fresh-digest", testutil.Epoch.Add(2*time.Hour))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetParentByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "fresh-digest", got.PasswordHash)
}
