// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/mainda/accounts/internal/apperr"
	"codeberg.org/mainda/accounts/internal/auth"
	"codeberg.org/mainda/accounts/internal/clock"
	"codeberg.org/mainda/accounts/internal/ctxkeys"
	"codeberg.org/mainda/accounts/internal/i18n"
	"codeberg.org/mainda/accounts/internal/metrics"
	"codeberg.org/mainda/accounts/internal/middleware"
	"codeberg.org/mainda/accounts/internal/services/token"
	"codeberg.org/mainda/accounts/internal/testutil"
	"github.com/labstack/echo/v4"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	parent = auth.ParentIdentity{ID: 1, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
	child  = auth.ChildIdentity{ID: 7, Username: "bob_ada", FirstName: "Bob", LastName: "Lovelace"}
)

func newTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "test",
	}, clock.NewMock(testutil.Epoch))
	require.NoError(t, err)
	return svc
}

func issue(t *testing.T, svc *token.Service, id auth.Identity) string {
	t.Helper()
	tok, err := svc.IssueAccess(id)
	require.NoError(t, err)
	return tok
}

// run passes a request through Authenticate and returns the principal the
// handler saw.
func run(t *testing.T, svc *token.Service, prepare func(*http.Request)) (auth.Identity, error) {
	t.Helper()
	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/api/parent/profile", nil)
	prepare(c.Request())

	var seen auth.Identity
	h := middleware.Authenticate(svc)(func(c echo.Context) error {
		seen = auth.GetIdentity(c.Request().Context())
		assert.Equal(t, seen, c.Get(ctxkeys.IdentityKey))
		return c.NoContent(http.StatusOK)
	})
	return seen, h(c)
}

func TestAuthenticate(t *testing.T) {
	svc := newTokens(t)
	parentToken := issue(t, svc, parent)
	childToken := issue(t, svc, child)

	t.Run("bearer header", func(t *testing.T) {
		id, err := run(t, svc, func(r *http.Request) {
			r.Header.Set(echo.HeaderAuthorization, "Bearer "+parentToken)
		})
		require.NoError(t, err)
		assert.Equal(t, parent, id)
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		id, err := run(t, svc, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: childToken})
			r.Header.Set(echo.HeaderAuthorization, "Bearer "+parentToken)
		})
		require.NoError(t, err)
		assert.Equal(t, child, id)
	})

	t.Run("bad cookie is not rescued by header", func(t *testing.T) {
		_, err := run(t, svc, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "garbage"})
			r.Header.Set(echo.HeaderAuthorization, "Bearer "+parentToken)
		})
		assert.Equal(t, apperr.CodeInvalidAccessToken, apperr.Code(err))
	})

	t.Run("missing", func(t *testing.T) {
		id, err := run(t, svc, func(*http.Request) {})
		assert.Nil(t, id)
		assert.Equal(t, apperr.CodeAccessTokenMissing, apperr.Code(err))
		assert.Equal(t, http.StatusUnauthorized, apperr.Resolve(err).Status)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		_, err := run(t, svc, func(r *http.Request) {
			r.Header.Set(echo.HeaderAuthorization, "Basic "+parentToken)
		})
		assert.Equal(t, apperr.CodeAccessTokenMissing, apperr.Code(err))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := run(t, svc, func(r *http.Request) {
			r.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
		})
		assert.Equal(t, apperr.CodeInvalidAccessToken, apperr.Code(err))
		assert.Equal(t, "Invalid or expired access token", apperr.Resolve(err).Message)
	})
}

func TestRequireKind(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name      string
		id        auth.Identity
		mw        echo.MiddlewareFunc
		forbidden bool
	}{
		{"parent on parent route", parent, middleware.RequireParent, false},
		{"child on parent route", child, middleware.RequireParent, true},
		{"child on child route", child, middleware.RequireChild, false},
		{"parent on child route", parent, middleware.RequireChild, true},
		{"anonymous", nil, middleware.RequireParent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
			if tt.id != nil {
				c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), tt.id)))
			}

			err := tt.mw(ok)(c)
			if tt.forbidden {
				assert.Equal(t, apperr.CodeForbidden, apperr.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestLocale(t *testing.T) {
	e := echo.New()
	e.Use(middleware.Locale())

	var locale string
	e.GET("/", func(c echo.Context) error {
		locale = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	for header, want := range map[string]string{
		"de-DE,de;q=0.9": "de",
		"en-US":          "en",
		"fr-FR":          "en",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", header)
		e.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, want, locale, header)
	}
}

func TestMetrics(t *testing.T) {
	e := echo.New()
	e.Use(middleware.Metrics())
	e.GET("/api/things/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return apperr.New(apperr.CodeChildNotFound, "Child not found")
		}
		return c.NoContent(http.StatusOK)
	})

	ok := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/things/:id", "200")
	notFound := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/things/:id", "404")
	okBefore, notFoundBefore := promtest.ToFloat64(ok), promtest.ToFloat64(notFound)

	for _, path := range []string{"/api/things/1", "/api/things/2", "/api/things/missing"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, okBefore+2, promtest.ToFloat64(ok))
	assert.Equal(t, notFoundBefore+1, promtest.ToFloat64(notFound))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/api/children/:childId", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String(), "health checks are not logged")

	req := httptest.NewRequest(http.MethodGet, "/api/children/42", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "/api/children/42", entry["uri"])
	assert.Equal(t, "/api/children/:childId", entry["route"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.InDelta(t, http.StatusNoContent, entry["status"], 0)
}
