package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	id, ok := m.ResolveCallerID(token)
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	foreign, err := other.Issue("user-1", "")
	require.NoError(t, err)

	expiredManager := NewTokenManager("secret", time.Hour)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredManager.Issue("user-1", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-1"})
	eternal, err := noExpiry.SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":         "",
		"malformed":     "not-a-token",
		"bad signature": foreign,
		"expired":       expired,
		"alg none":      unsigned,
		"no expiry":     eternal,
	}

	for name, credential := range cases {
		t.Run(name, func(t *testing.T) {
			id, ok := m.ResolveCallerID(credential)
			assert.False(t, ok)
			assert.Empty(t, id)
		})
	}
}
