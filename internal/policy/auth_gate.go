// Package policy wires the authorization gate to the database and exposes
// it as HTTP middleware.
package policy

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/auth"
	"github.com/ellsondrew-png/inventory-system-tml/gate"
	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"gorm.io/gorm"
)

// DefaultCacheTTL is how long a resolved profile is reused.
const DefaultCacheTTL = 5 * time.Minute

// AuthGate is the application's single authorization point.
type AuthGate struct {
	Gate     *gate.Gate[uint]
	Resolver *gate.CachedResolver[uint]
}

func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	return NewAuthGateWithResolver(NewDBProfileResolver(db), cacheTTL)
}

func NewAuthGateWithResolver(resolver gate.ProfileResolver[uint], cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](resolver, cacheTTL)
	return &AuthGate{Gate: gate.New[uint](cached), Resolver: cached}
}

// Authorize checks the user stored in ctx.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, userID, action, resourceType)
}

// InvalidateUser drops the cached profile after a profile change.
func (ag *AuthGate) InvalidateUser(userID uint) { ag.Resolver.Invalidate(userID) }

// RequirePermission answers 401 without a session and 403 when the user's
// profile does not grant resourceType:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if err := ag.Authorize(r.Context(), action, resourceType); err != nil {
				if !errors.Is(err, gate.ErrUnauthorized) {
					log.Printf("authorize %s:%s: %v", resourceType, action, err)
				}
				httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{"required": string(gate.NewPermission(resourceType, action))})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets through users whose profile grants "*:*".
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !ag.Gate.IsSuperAdmin(r.Context(), userID) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
