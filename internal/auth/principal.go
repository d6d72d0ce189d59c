package auth

import "context"

// RoleAdmin is the role that marks a principal as privileged.
const RoleAdmin = "admin"

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   string
	Role string
}

// Privileged reports whether the principal may author catalog entries.
func (p Principal) Privileged() bool { return p.Role == RoleAdmin }

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal attached to ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
