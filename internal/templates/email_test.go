// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates_test

import (
	"context"
	"strings"
	"testing"

	"codeberg.org/mainda/accounts/internal/i18n"
	"codeberg.org/mainda/accounts/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func english() context.Context {
	return i18n.WithLocale(context.Background(), language.English)
}

func TestVerifyEmailBody_Reasons(t *testing.T) {
	ctx := english()

	tests := []struct {
		reason  string
		subject string
		heading string
	}{
		{"registration", "Verify Your Email", "Welcome to Mainda, Ada!"},
		{"email-changed", "Verify Your New Email", "Verify Your New Email"},
		{"resend", "Verify Your Email", "Verify Your Email"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			b := templates.VerifyEmailBody(ctx, tt.reason, "Ada", "https://app.example/verify-email?token=abc")
			assert.Equal(t, tt.subject, b.Subject)
			assert.Equal(t, tt.heading, b.Heading)
			assert.Equal(t, "Verify Email", b.Action)
			assert.NotEmpty(t, b.Footer)
		})
	}
}

func TestEmail_RendersLinkAndEscapes(t *testing.T) {
	ctx := english()
	b := templates.VerifyEmailBody(ctx, "registration", "<Ada>", "https://app.example/verify-email?token=abc")

	html, err := templates.RenderString(ctx, templates.Email(b))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, `<html lang="en">`)
	assert.Contains(t, html, `href="https://app.example/verify-email?token=abc"`)
	assert.Contains(t, html, "Welcome to Mainda, &lt;Ada&gt;!")
	assert.NotContains(t, html, "<Ada>")
}

func TestEmail_RejectsUnsafeLink(t *testing.T) {
	ctx := english()
	b := templates.PasswordResetBody(ctx, "javascript:alert(1)")

	html, err := templates.RenderString(ctx, templates.Email(b))
	require.NoError(t, err)

	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, `href="about:invalid#TemplFailedSanitizationURL"`)
}

func TestEmail_WithoutLink(t *testing.T) {
	ctx := english()
	b := templates.ChildResetRequestBody(ctx, "Bob")

	html, err := templates.RenderString(ctx, templates.Email(b))
	require.NoError(t, err)

	assert.Contains(t, html, "Password Reset Request for Bob")
	assert.NotContains(t, html, "<a ")
}

func TestEmail_German(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.German)
	b := templates.PasswordResetBody(ctx, "https://app.example/reset-password?token=abc")

	html, err := templates.RenderString(ctx, templates.Email(b))
	require.NoError(t, err)

	assert.Contains(t, html, `<html lang="de">`)
	assert.Contains(t, html, "Passwort zurücksetzen")
}

func TestText(t *testing.T) {
	b := templates.PasswordResetBody(english(), "https://app.example/reset-password?token=abc")

	text := templates.Text(b)

	assert.Contains(t, text, "Password Reset Request\n\n")
	assert.Contains(t, text, "\n\nhttps://app.example/reset-password?token=abc\n\n")
}
