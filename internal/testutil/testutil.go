// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/mainda/accounts/internal/database"
	"codeberg.org/mainda/accounts/internal/models"
	"codeberg.org/mainda/accounts/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Password is the plaintext password of every fixture principal.
const Password = "password123"

// Epoch is the fixed time used by fixtures and mock clocks.
var Epoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// HashPassword hashes plain at the minimum bcrypt cost to keep tests fast.
func HashPassword(t *testing.T, plain string) string {
	t.Helper()
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

// FastHasher is a bcrypt password.Hasher at the minimum cost.
type FastHasher struct{}

// Hash returns a MinCost bcrypt digest of plain.
func (FastHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	return string(digest), err
}

// Verify reports whether plain matches digest.
func (FastHasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// ParentOption customizes a fixture parent before it is stored.
type ParentOption func(*models.Parent)

// Unverified leaves the fixture parent's email unverified.
func Unverified() ParentOption {
	return func(p *models.Parent) { p.IsVerified = false }
}

// Deactivated stores the fixture parent with status=false.
func Deactivated() ParentOption {
	return func(p *models.Parent) { p.Status = false }
}

// NewTestParent creates a verified, active parent with Password.
func NewTestParent(t *testing.T, repo *repository.Repository, email string, opts ...ParentOption) *models.Parent {
	t.Helper()
	p := &models.Parent{
		Email:        email,
		PasswordHash: HashPassword(t, Password),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		IsVerified:   true,
		Status:       true,
		CreatedAt:    Epoch,
		UpdatedAt:    Epoch,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, repo.CreateParent(context.Background(), p))
	return p
}

// NewTestChild creates an active child of parentID with Password.
func NewTestChild(t *testing.T, repo *repository.Repository, parentID int64, username string) *models.Child {
	t.Helper()
	c := &models.Child{
		Username:     username,
		PasswordHash: HashPassword(t, Password),
		FirstName:    "Bob",
		LastName:     "Lovelace",
		BirthDate:    time.Date(2015, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:       "male",
		SchoolLevel:  "primary",
		Status:       true,
		ParentID:     parentID,
		CreatedAt:    Epoch,
		UpdatedAt:    Epoch,
	}
	require.NoError(t, repo.CreateChild(context.Background(), c))
	return c
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
