package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "pressgate", time.Hour)
	verifier := NewTokenVerifier(testSigningKey, "pressgate")

	token, err := issuer.Issue("u-42", "Ola Nordmann", "ola@pressgate.example", []string{RoleBroker})
	require.NoError(t, err)

	userCtx, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", userCtx.UserID)
	assert.Equal(t, "Ola Nordmann", userCtx.DisplayName)
	assert.Equal(t, "ola@pressgate.example", userCtx.Email)
	assert.True(t, userCtx.HasRole(RoleBroker))
	assert.False(t, userCtx.HasRole(RoleAdmin))
}

func TestTokenWrongKeyRejected(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "pressgate", time.Hour)
	verifier := NewTokenVerifier("another-key-entirely-another-key", "pressgate")

	token, err := issuer.Issue("u-42", "Ola Nordmann", "", []string{RoleViewer})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenWrongIssuerRejected(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "somewhere-else", time.Hour)
	verifier := NewTokenVerifier(testSigningKey, "pressgate")

	token, err := issuer.Issue("u-42", "Ola Nordmann", "", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenExpiredRejected(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "pressgate", -time.Minute)
	verifier := NewTokenVerifier(testSigningKey, "pressgate")

	token, err := issuer.Issue("u-42", "Ola Nordmann", "", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
