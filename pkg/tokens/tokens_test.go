package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestIssue_RoundTrip(t *testing.T) {
	t.Parallel()

	token, exp, err := Issue("42", "alice", []string{"viewer", "asset_admin"}, testSecret, TokenTTL)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := ClaimsFromToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"viewer", "asset_admin"}, claims.Roles)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestClaimsFromToken_Expired(t *testing.T) {
	t.Parallel()

	token, _, err := Issue("42", "alice", []string{"viewer"}, testSecret, -time.Minute)
	require.NoError(t, err)

	claims, err := ClaimsFromToken(token, testSecret)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestClaimsFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := Issue("42", "alice", []string{"viewer"}, testSecret, TokenTTL)
	require.NoError(t, err)

	claims, err := ClaimsFromToken(token, []byte("another-secret"))
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestClaimsFromToken_Tampered(t *testing.T) {
	t.Parallel()

	token, _, err := Issue("42", "alice", []string{"viewer"}, testSecret, TokenTTL)
	require.NoError(t, err)

	// flip one byte in the payload segment
	raw := []byte(token)
	mid := len(raw) / 2
	if raw[mid] == 'a' {
		raw[mid] = 'b'
	} else {
		raw[mid] = 'a'
	}

	claims, err := ClaimsFromToken(string(raw), testSecret)
	require.Error(t, err)
	assert.Nil(t, claims)
}

func TestClaimsFromToken_Malformed(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		claims, err := ClaimsFromToken(bad, testSecret)
		require.Error(t, err)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrMalformed)
	}
}
