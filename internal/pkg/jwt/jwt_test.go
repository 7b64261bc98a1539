package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	token, err := Sign("owner", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Subject)
}

func TestParseExpiredToken(t *testing.T) {
	token, err := Sign("owner", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("not.a.token")
	assert.Error(t, err)
}

func TestSetSecretInvalidatesOldTokens(t *testing.T) {
	t.Cleanup(func() { secret = []byte(defaultSecret) })

	token, err := Sign("owner", time.Hour)
	require.NoError(t, err)

	SetSecret("a-completely-different-secret")
	_, err = Parse(token)
	assert.Error(t, err)

	// Empty input leaves the current secret in place.
	SetSecret("")
	_, err = Parse(token)
	assert.Error(t, err)
}
