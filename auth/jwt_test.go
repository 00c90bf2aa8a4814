package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	p := &Principal{UserID: "u-1", Role: "driver", DriverID: "d-1", CustomerID: "c-stale"}
	access, refresh, err := IssueTokenPair("secret", p, time.Hour, 2*time.Hour)
	require.NoError(t, err)

	claims, err := ParseAndValidate("secret", access)
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims.TokenType)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "driver", claims.Role)
	assert.Equal(t, "d-1", claims.DriverID)
	assert.Empty(t, claims.CustomerID, "only the role's own profile id is embedded")

	rclaims, err := ParseAndValidate("secret", refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, rclaims.TokenType)
	assert.Equal(t, "u-1", rclaims.UserID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	p := &Principal{UserID: "u-1", Role: "customer", CustomerID: "c-1"}
	token, err := SignJWT("right-secret", p, time.Hour, TokenAccess)
	require.NoError(t, err)

	_, err = ParseAndValidate("wrong-secret", token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	p := &Principal{UserID: "u-1", Role: "admin", AdminID: "a-1"}
	token, err := SignJWT("secret", p, -time.Minute, TokenAccess)
	require.NoError(t, err)

	_, err = ParseAndValidate("secret", token)
	assert.Error(t, err)
}
