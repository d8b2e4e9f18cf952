package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Storage)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "source", cfg.RefreshPolicy)
	assert.False(t, cfg.ExclusiveRanges)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("EXCLUSIVE_RANGES", "true")
	t.Setenv("SKIP_AUTH", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 50, cfg.PageSize)
	assert.True(t, cfg.ExclusiveRanges)
	assert.True(t, cfg.SkipAuth)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}
