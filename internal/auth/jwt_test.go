package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", "storefront", time.Hour)

	token, err := a.GenerateSessionToken("sess-123")
	require.NoError(t, err)

	parsed, err := a.ValidateSessionToken(token)
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "sess-123", sub)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", "storefront", time.Hour)
	b := NewJWTAuthenticator("other", "storefront", "storefront", time.Hour)

	token, err := a.GenerateSessionToken("sess-123")
	require.NoError(t, err)

	_, err = b.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", "storefront", -time.Minute)

	token, err := a.GenerateSessionToken("sess-123")
	require.NoError(t, err)

	_, err = a.ValidateSessionToken(token)
	assert.Error(t, err)
}
