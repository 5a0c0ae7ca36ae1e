// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/security"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID    id.ID
	Username  string
	Role      security.Role
	SessionID string
}

// IsSuperAdmin reports whether the caller holds the superadmin role.
func (u *UserContext) IsSuperAdmin() bool {
	return u != nil && u.Role == security.RoleSuperAdmin
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or the nil ID.
func GetUserID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return id.ID{}
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role security.Role) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == role
}
