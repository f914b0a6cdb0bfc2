package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-clinic/aura/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "aura", time.Hour)
	raw, err := tm.Generate(models.User{ID: 42})
	require.NoError(t, err)

	id, err := tm.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestParseRejects(t *testing.T) {
	tm := NewTokenManager("secret", "aura", time.Hour)

	other := NewTokenManager("other-secret", "aura", time.Hour)
	forged, err := other.Generate(models.User{ID: 1})
	require.NoError(t, err)
	_, err = tm.Parse(forged)
	assert.ErrorIs(t, err, ErrBadToken)

	wrongIssuer := NewTokenManager("secret", "someone-else", time.Hour)
	raw, err := wrongIssuer.Generate(models.User{ID: 1})
	require.NoError(t, err)
	_, err = tm.Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)

	expired := NewTokenManager("secret", "aura", -time.Minute)
	raw, err = expired.Generate(models.User{ID: 1})
	require.NoError(t, err)
	_, err = tm.Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", Issuer: "aura"})
	raw, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)

	_, err = tm.Parse("garbage")
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("aura123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "aura123"))
	assert.False(t, CheckPassword(hash, "aura124"))
}

func TestGenerateResetCode(t *testing.T) {
	code, err := GenerateResetCode()
	require.NoError(t, err)
	require.Len(t, code, ResetCodeLength)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9', "non-digit %q", c)
	}
}
