// ABOUTME: Authenticated principal and its propagation through request handlers
// ABOUTME: Provides WithPrincipal/FromContext for passing identity via context

package auth

import (
	"context"

	"github.com/2389/docket/internal/store"
)

// Principal is the identity resolved for a single call. It is rebuilt from the
// user record on every request and never cached between calls.
type Principal struct {
	ID         string
	Role       store.Role
	Department string
}

// IsAdmin returns true if the principal has the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == store.RoleAdmin
}

// IsDepartmentHead returns true if the principal heads the given department.
func (p *Principal) IsDepartmentHead(department string) bool {
	return p != nil && p.Role == store.RoleDepartmentHead && p.Department == department
}

// PrincipalFromUser builds the per-call identity for an account.
func PrincipalFromUser(u *store.User) *Principal {
	return &Principal{ID: u.ID, Role: u.Role, Department: u.Department}
}

// principalContextKey is the key type for storing Principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext retrieves the Principal from the context, returning nil if not present.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
