package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gojwt "github.com/golang-jwt/jwt/v4"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager("secret", 0)

	token, err := m.Issue("3f1c9a3e-5d55-4a9b-9f0e-1c2d3e4f5a6b")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "3f1c9a3e-5d55-4a9b-9f0e-1c2d3e4f5a6b", userID)
}

func TestTokenWithoutTTLHasNoExpiry(t *testing.T) {
	token, err := NewToken("user-1", "secret", 0)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)

	_, hasExp := claims["exp"]
	assert.False(t, hasExp)
	assert.Equal(t, map[string]interface{}{"id": "user-1"}, claims)
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager("secret", 0)

	other, err := NewToken("user-1", "other-secret", 0)
	require.NoError(t, err)

	noID := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"sub": "user-1"})
	noIDToken, err := noID.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"missing id":   noIDToken,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"id":  "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
