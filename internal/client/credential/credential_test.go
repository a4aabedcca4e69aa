package credential

import (
	"testing"
	"time"

	"kinderstep-backend/internal/client/gueststore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return token
}

func resolverWith(t *testing.T, token string) (*Resolver, gueststore.Store) {
	t.Helper()
	store := gueststore.NewMemoryStore()
	if token != "" {
		require.NoError(t, store.Set(gueststore.KeyToken, token))
	}
	r := NewResolver(store)
	r.now = func() time.Time { return now }
	return r, store
}

func TestResolve_ValidToken(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "u1", "email": "a@b.c", "role": "customer", "exp": now.Add(time.Hour).Unix()})
	r, store := resolverWith(t, token)

	assert.Equal(t, token, r.Resolve())
	id, ok := r.Identity()
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "customer", id.Role)

	_, still := store.Get(gueststore.KeyToken)
	assert.True(t, still)
}

func TestResolve_ExpiredTokenIsDeleted(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(-10 * time.Second).Unix()})
	r, store := resolverWith(t, token)

	assert.Equal(t, "", r.Resolve())
	_, still := store.Get(gueststore.KeyToken)
	assert.False(t, still)
}

func TestResolve_MalformedOrNoExpiry(t *testing.T) {
	for name, token := range map[string]string{
		"garbage":   "not-a-jwt",
		"no expiry": sign(t, jwt.MapClaims{"sub": "u1"}),
	} {
		t.Run(name, func(t *testing.T) {
			r, store := resolverWith(t, token)
			assert.Equal(t, "", r.Resolve())
			_, still := store.Get(gueststore.KeyToken)
			assert.False(t, still)
		})
	}
}

func TestSaveAndClear(t *testing.T) {
	r, _ := resolverWith(t, "")
	assert.Equal(t, "", r.Resolve())

	token := sign(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(time.Minute).Unix()})
	require.NoError(t, r.Save(token))
	assert.Equal(t, token, r.Resolve())

	require.NoError(t, r.Clear())
	assert.Equal(t, "", r.Resolve())
}
