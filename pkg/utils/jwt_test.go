package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateToken("user-1", []string{"mecanico"}, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, claims.HasRole("admin", "mecanico"))
	assert.False(t, claims.HasRole("admin"))
}

func TestValidateTokenRejects(t *testing.T) {
	SetSecret("one")
	token, err := GenerateToken("user-1", nil, time.Hour)
	require.NoError(t, err)

	SetSecret("two")
	_, err = ValidateToken(token)
	assert.Error(t, err)

	expired, err := GenerateToken("user-1", nil, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.Error(t, err)
}
