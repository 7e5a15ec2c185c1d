package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyAdminSecretPlain(t *testing.T) {
	assert.True(t, VerifyAdminSecret("s3cret", "", "s3cret"))
	assert.False(t, VerifyAdminSecret("s3cret", "", "S3cret"))
	assert.False(t, VerifyAdminSecret("s3cret", "", ""))
	assert.False(t, VerifyAdminSecret("", "", ""))
}

func TestVerifyAdminSecretBcrypt(t *testing.T) {
	hash, err := HashPassword("svatba2026", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyAdminSecret("ignored", hash, "svatba2026"))
	assert.False(t, VerifyAdminSecret("ignored", hash, "ignored"))
}

func TestAdminTokenRoundTrip(t *testing.T) {
	tok, err := NewAdminToken("jwt-secret", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	claims, err := ParseToken("jwt-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims["role"])
	assert.Equal(t, "admin", claims["sub"])

	_, err = ParseToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAdminToken(t *testing.T) {
	tok, err := NewAdminToken("jwt-secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("jwt-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
