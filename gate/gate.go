// Package gate is a small profile-based authorization checkpoint. A user
// resolves to one Profile and every request is checked against a
// "resource:action" Permission.
//
// The package is generic over the subject type so it can be keyed by a
// numeric user ID or a richer user value.
package gate

import "context"

// Gate authorizes subjects of type U through a ProfileResolver.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// Authorize returns ErrUnauthorized when user is the zero value, has no
// profile, or its profile does not grant resourceType:action. Resolver
// errors are returned unchanged.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return err
	}
	if profile == nil || !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	return nil
}

// Can is Authorize reduced to a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.Authorize(ctx, user, action, resourceType) == nil
}

// IsSuperAdmin reports whether user's profile grants "*:*".
func (g *Gate[U]) IsSuperAdmin(ctx context.Context, user U) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(PermissionSuperAdmin)
}
