// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ctxkeys defines typed context keys used across packages.
package ctxkeys

// Identity is the context key for the authenticated principal.
type Identity struct{}

// Identity is also stored on the echo.Context under this name.
const IdentityKey = "identity"
