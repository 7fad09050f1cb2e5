// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides the authenticated principal and its context helpers.
package auth

import (
	"context"

	"codeberg.org/mainda/accounts/internal/ctxkeys"
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxkeys.Identity{}, id)
}

// GetIdentity returns the authenticated principal from the context, or nil.
func GetIdentity(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxkeys.Identity{}).(Identity); ok {
		return id
	}
	return nil
}

// GetParent returns the parent principal, if the context holds one.
func GetParent(ctx context.Context) (ParentIdentity, bool) {
	p, ok := GetIdentity(ctx).(ParentIdentity)
	return p, ok
}

// GetChild returns the child principal, if the context holds one.
func GetChild(ctx context.Context) (ChildIdentity, bool) {
	c, ok := GetIdentity(ctx).(ChildIdentity)
	return c, ok
}

// IsAuthenticated returns true if the context has an authenticated principal.
func IsAuthenticated(ctx context.Context) bool {
	return GetIdentity(ctx) != nil
}
