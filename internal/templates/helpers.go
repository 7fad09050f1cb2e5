// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML bodies of outgoing email.
package templates

import (
	"context"

	"codeberg.org/mainda/accounts/internal/i18n"
	"github.com/a-h/templ"
)

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return i18n.TData(ctx, messageID, data)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// RenderString renders c into a string using the locale carried by ctx.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := c.Render(ctx, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
