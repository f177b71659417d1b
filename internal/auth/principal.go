package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/campuswash/laundry/internal/entity"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     entity.Role
}

// IsLaunderer reports whether the caller operates a laundromat.
func (p Principal) IsLaunderer() bool { return p.Role == entity.RoleLaunderer }

// IsStudent reports whether the caller is a customer.
func (p Principal) IsStudent() bool { return p.Role == entity.RoleStudent }

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
