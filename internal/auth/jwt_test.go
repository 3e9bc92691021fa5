package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-tests"

func TestIssueAndParse(t *testing.T) {
	manager := NewTokenManager(testSecret, 12*time.Hour)

	token, err := manager.Issue(42, "seller")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "seller", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseExpiredToken(t *testing.T) {
	manager := NewTokenManager(testSecret, -time.Minute)

	token, err := manager.Issue(1, "customer")
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseWrongSecret(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("a-completely-different-signing-key", time.Hour)

	token, err := manager.Issue(7, "admin")
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnexpectedSigningMethod(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)

	// alg=none tokens must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 9, Role: "admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)

	_, err := manager.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
