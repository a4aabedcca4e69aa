// Package credential owns the stored bearer token of the storefront client.
package credential

import (
	"time"

	"kinderstep-backend/internal/client/gueststore"
	"kinderstep-backend/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the client can read from its own token.
type Identity struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Resolver reads and writes the token kept under gueststore.KeyToken.
type Resolver struct {
	store gueststore.Store
	now   func() time.Time
}

func NewResolver(store gueststore.Store) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve returns the stored token when it is present and unexpired, else "".
//
// Side effect: a token that is malformed, carries no exp claim, or has expired
// is deleted from the store. The signature is not verified; only the server
// can do that.
func (r *Resolver) Resolve() string {
	token, _, ok := r.resolve()
	if !ok {
		return ""
	}
	return token
}

// Identity returns the claims of a valid stored token.
func (r *Resolver) Identity() (Identity, bool) {
	_, id, ok := r.resolve()
	return id, ok
}

func (r *Resolver) resolve() (string, Identity, bool) {
	token, ok := r.store.Get(gueststore.KeyToken)
	if !ok || token == "" {
		return "", Identity{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		r.discard("malformed")
		return "", Identity{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		r.discard("no expiry")
		return "", Identity{}, false
	}
	if !r.now().Before(exp.Time) {
		r.discard("expired")
		return "", Identity{}, false
	}

	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return token, Identity{UserID: sub, Email: email, Role: role, ExpiresAt: exp.Time}, true
}

func (r *Resolver) discard(reason string) {
	if err := r.store.Delete(gueststore.KeyToken); err != nil {
		logger.Warn().Err(err).Msg("Failed to delete stale token")
		return
	}
	logger.Debug().Str("reason", reason).Msg("Discarded stored token")
}

func (r *Resolver) Save(token string) error {
	return r.store.Set(gueststore.KeyToken, token)
}

func (r *Resolver) Clear() error {
	return r.store.Delete(gueststore.KeyToken)
}
