// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import "codeberg.org/mainda/accounts/internal/models"

// Kind names a principal type.
type Kind string

const (
	KindParent Kind = "parent"
	KindChild  Kind = "child"
)

// Identity is an authenticated principal: exactly one of ParentIdentity or
// ChildIdentity. Switch on the concrete type to handle each kind.
type Identity interface {
	Kind() Kind
	PrincipalID() int64
	isIdentity()
}

// ParentIdentity is a Parent resolved from a verified token.
type ParentIdentity struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
}

func (ParentIdentity) Kind() Kind { return KindParent }
func (p ParentIdentity) PrincipalID() int64 { return p.ID }
func (ParentIdentity) isIdentity() {}

// ChildIdentity is a Child resolved from a verified token.
type ChildIdentity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

func (ChildIdentity) Kind() Kind { return KindChild }
func (c ChildIdentity) PrincipalID() int64 { return c.ID }
func (ChildIdentity) isIdentity() {}

// ParentIdentityOf builds the token identity for p.
func ParentIdentityOf(p *models.Parent) ParentIdentity {
	return ParentIdentity{ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName}
}

// ChildIdentityOf builds the token identity for c.
func ChildIdentityOf(c *models.Child) ChildIdentity {
	return ChildIdentity{ID: c.ID, Username: c.Username, FirstName: c.FirstName, LastName: c.LastName}
}

// Owns reports whether id may act on child: a parent owns its children and
// a child owns itself. Every child-scoped flow decides access through this.
func Owns(id Identity, child *models.Child) bool {
	if id == nil || child == nil {
		return false
	}
	switch p := id.(type) {
	case ParentIdentity:
		return child.ParentID == p.ID
	case ChildIdentity:
		return child.ID == p.ID
	default:
		return false
	}
}
