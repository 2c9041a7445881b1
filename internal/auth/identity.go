package auth

import (
	"context"
	"sort"
)

// Identity is the capability-bearing record reconstructed from a validated
// token and attached to the request context.
type Identity struct {
	Email       string
	UserID      int64
	PolicyGroup string

	permissions map[string]struct{}
}

// NewIdentity builds an Identity from decoded claims.
func NewIdentity(claims *Claims) Identity {
	set := make(map[string]struct{}, len(claims.Permissions))
	for _, ns := range claims.Permissions {
		set[ns] = struct{}{}
	}
	return Identity{
		Email:       claims.Subject,
		UserID:      claims.UserID,
		PolicyGroup: claims.PolicyGroup,
		permissions: set,
	}
}

// Can reports whether the identity holds the permission namespace.
func (id Identity) Can(namespace string) bool {
	_, ok := id.permissions[namespace]
	return ok
}

// CanOrSelf permits the action when the identity holds the namespace, or
// when it owns the target resource. The namespace is checked first.
func (id Identity) CanOrSelf(namespace string, ownerID int64) bool {
	if id.Can(namespace) {
		return true
	}
	return ownerID > 0 && id.UserID == ownerID
}

// Permissions returns the namespace snapshot in sorted order.
func (id Identity) Permissions() []string {
	out := make([]string, 0, len(id.permissions))
	for ns := range id.permissions {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &id)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil {
		return Identity{}, false
	}
	return *v, true
}
