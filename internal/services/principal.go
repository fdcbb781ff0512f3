package services

import (
	"context"

	"storefront/internal/models"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	Username string
	Role     models.Role
}

// IsAdmin reports whether the principal may use admin operations.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal in ctx, or nil for anonymous callers.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// userIDFrom returns the principal's user id, or nil for guests.
func userIDFrom(ctx context.Context) *string {
	if p := PrincipalFrom(ctx); p != nil && p.UserID != "" {
		id := p.UserID
		return &id
	}
	return nil
}
