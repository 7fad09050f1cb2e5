// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"strconv"
	"testing"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	authn "codeberg.org/mainda/accounts/internal/auth"
	"codeberg.org/mainda/accounts/internal/services/auth"
	"codeberg.org/mainda/accounts/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childParams(first string) auth.RegisterChildParams {
	return auth.RegisterChildParams{
		FirstName:   first,
		LastName:    "Lovelace",
		Password:    "child-pass",
		BirthDate:   time.Date(2016, 4, 2, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		SchoolLevel: "primary",
	}
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		first, email, want string
	}{
		{"Bob", "ada@example.com", "bob_ada"},
		{"  Mary Ann ", "Ada.L@Example.com", "mary-ann_ada.l"},
		{"ÉLODIE", "x@y.z", "élodie_x"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.DeriveUsername(tt.first, tt.email))
		})
	}
}

func TestRegisterChild_Suffixes(t *testing.T) {
	e := newEnv(t)
	parent := testutil.NewTestParent(t, e.repo, "ada@example.com")

	want := []string{"lily_ada", "lily_ada_1", "lily_ada_2"}
	for _, username := range want {
		child, err := e.svc.RegisterChild(ctx, parent.ID, childParams("Lily"))
		require.NoError(t, err)
		assert.Equal(t, username, child.Username)
		assert.Equal(t, parent.ID, child.ParentID)
		assert.True(t, child.Status)
	}
}

func TestRegisterChild_UsernameExhausted(t *testing.T) {
	e := newEnv(t)
	parent := testutil.NewTestParent(t, e.repo, "ada@example.com")

	testutil.NewTestChild(t, e.repo, parent.ID, "bob_ada")
	for i := 1; i <= auth.MaxUsernameSuffix; i++ {
		testutil.NewTestChild(t, e.repo, parent.ID, "bob_ada_"+strconv.Itoa(i))
	}

	_, err := e.svc.RegisterChild(ctx, parent.ID, childParams("Bob"))
	assertCode(t, err, apperr.CodeUsernameUnavailable)
}

func TestRegisterChild_ParentState(t *testing.T) {
	e := newEnv(t)
	unverified := testutil.NewTestParent(t, e.repo, "new@example.com", testutil.Unverified())
	inactive := testutil.NewTestParent(t, e.repo, "gone@example.com", testutil.Deactivated())

	_, err := e.svc.RegisterChild(ctx, unverified.ID, childParams("Lily"))
	assertCode(t, err, apperr.CodeEmailNotVerified)

	_, err = e.svc.RegisterChild(ctx, inactive.ID, childParams("Lily"))
	assertCode(t, err, apperr.CodeAccountDeactivated)

	_, err = e.svc.RegisterChild(ctx, 9999, childParams("Lily"))
	assertCode(t, err, apperr.CodeParentNotFound)
}

func TestChildOwnership(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewTestParent(t, e.repo, "ada@example.com")
	other := testutil.NewTestParent(t, e.repo, "eve@example.com")
	child := testutil.NewTestChild(t, e.repo, owner.ID, "bob_ada")

	ownerID := authn.ParentIdentityOf(owner)
	otherID := authn.ParentIdentityOf(other)

	got, err := e.svc.GetChild(ctx, ownerID, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob_ada", got.Username)

	_, foreign := e.svc.GetChild(ctx, otherID, child.ID)
	_, missing := e.svc.GetChild(ctx, ownerID, 9999)
	assertCode(t, foreign, apperr.CodeChildNotFoundOrForbidden)
	assertCode(t, missing, apperr.CodeChildNotFoundOrForbidden)
	assert.Equal(t, apperr.Resolve(foreign), apperr.Resolve(missing))

	_, err = e.svc.UpdateChild(ctx, otherID, child.ID, auth.ChildPatch{FirstName: ptr("Mallory")})
	assertCode(t, err, apperr.CodeChildNotFoundOrForbidden)

	stored, err := e.repo.GetChildByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", stored.FirstName)
}

func TestListChildren(t *testing.T) {
	e := newEnv(t)
	ada := testutil.NewTestParent(t, e.repo, "ada@example.com")
	eve := testutil.NewTestParent(t, e.repo, "eve@example.com")
	testutil.NewTestChild(t, e.repo, ada.ID, "bob_ada")
	testutil.NewTestChild(t, e.repo, ada.ID, "amy_ada")
	testutil.NewTestChild(t, e.repo, eve.ID, "bob_eve")

	children, err := e.svc.ListChildren(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, c := range children {
		assert.Equal(t, ada.ID, c.ParentID)
	}

	none, err := e.svc.ListChildren(ctx, 9999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdateChild(t *testing.T) {
	e := newEnv(t)
	parent := testutil.NewTestParent(t, e.repo, "ada@example.com")
	child := testutil.NewTestChild(t, e.repo, parent.ID, "bob_ada")
	who := authn.ParentIdentityOf(parent)

	updated, err := e.svc.UpdateChild(ctx, who, child.ID, auth.ChildPatch{
		SchoolLevel: ptr("secondary"),
		Password:    ptr("new-child-pass"),
	})
	require.NoError(t, err)
	assert.Equal(t, "secondary", updated.SchoolLevel)
	assert.Equal(t, "Bob", updated.FirstName, "unset fields keep their value")
	assert.Equal(t, parent.ID, updated.ParentID)

	_, err = e.svc.LoginChild(ctx, "bob_ada", testutil.Password)
	assertCode(t, err, apperr.CodeInvalidCredentials)
	_, err = e.svc.LoginChild(ctx, "bob_ada", "new-child-pass")
	require.NoError(t, err)

	_, err = e.svc.UpdateChild(ctx, who, child.ID, auth.ChildPatch{Status: ptr(false)})
	require.NoError(t, err)
	_, err = e.svc.LoginChild(ctx, "bob_ada", "new-child-pass")
	assertCode(t, err, apperr.CodeAccountDeactivated)
}

func TestLoginChild(t *testing.T) {
	e := newEnv(t)
	parent := testutil.NewTestParent(t, e.repo, "ada@example.com")
	child := testutil.NewTestChild(t, e.repo, parent.ID, "bob_ada")

	login, err := e.svc.LoginChild(ctx, "bob_ada", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, child.ID, login.Child.ID)

	id, err := e.tokens.VerifyAccess(login.Tokens.AccessToken)
	require.NoError(t, err)
	got, ok := id.(authn.ChildIdentity)
	require.True(t, ok, "expected child identity, got %T", id)
	assert.Equal(t, "bob_ada", got.Username)

	_, unknown := e.svc.LoginChild(ctx, "nobody", testutil.Password)
	_, wrong := e.svc.LoginChild(ctx, "bob_ada", "wrong-password")
	assertCode(t, unknown, apperr.CodeInvalidCredentials)
	assert.Equal(t, apperr.Resolve(unknown), apperr.Resolve(wrong))
}

func TestChildProfile(t *testing.T) {
	e := newEnv(t)
	parent := testutil.NewTestParent(t, e.repo, "ada@example.com")
	child := testutil.NewTestChild(t, e.repo, parent.ID, "bob_ada")
	who := authn.ChildIdentityOf(child)

	profile, err := e.svc.GetChildProfile(ctx, who)
	require.NoError(t, err)
	assert.Nil(t, profile.ProfilePictureURL)

	updated, err := e.svc.ChangeProfilePicture(ctx, who, "https://cdn.example/bob.png")
	require.NoError(t, err)
	require.NotNil(t, updated.ProfilePictureURL)
	assert.Equal(t, "https://cdn.example/bob.png", *updated.ProfilePictureURL)

	profile, err = e.svc.GetChildProfile(ctx, who)
	require.NoError(t, err)
	require.NotNil(t, profile.ProfilePictureURL)
	assert.Equal(t, "https://cdn.example/bob.png", *profile.ProfilePictureURL)

	ghost := authn.ChildIdentity{ID: 9999, Username: "ghost"}
	_, err = e.svc.GetChildProfile(ctx, ghost)
	assertCode(t, err, apperr.CodeChildNotFound)
	_, err = e.svc.ChangeProfilePicture(ctx, ghost, "https://cdn.example/x.png")
	assertCode(t, err, apperr.CodeChildNotFound)
}

func TestForgotChildPassword(t *testing.T) {
	e := newEnv(t)
	parent := testutil.NewTestParent(t, e.repo, "ada@example.com")
	testutil.NewTestChild(t, e.repo, parent.ID, "bob_ada")

	require.NoError(t, e.svc.ForgotChildPassword(ctx, "bob_ada"))

	msg, ok := e.sender.Last()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Contains(t, msg.TextBody, "Bob")

	err := e.svc.ForgotChildPassword(ctx, "nobody")
	assertCode(t, err, apperr.CodeChildNotFound)
}
