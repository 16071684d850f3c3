package webserver

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := IssueToken(secret, 42, "John Doe", "user", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(*SessionClaims)
	require.True(t, ok)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "John Doe", claims.Name)
	assert.Equal(t, "user", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestIssueTokenWrongSecretRejected(t *testing.T) {
	token, err := IssueToken("right-secret", 1, "Admin", "admin", time.Hour)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(token, &SessionClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}

func TestIssueTokenExpired(t *testing.T) {
	token, err := IssueToken("secret", 1, "Admin", "admin", -time.Minute)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	assert.Error(t, err)
	if parsed != nil {
		assert.False(t, parsed.Valid)
	}
}
