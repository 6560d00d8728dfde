package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 10, cfg.Pagination.PageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.True(t, cfg.Database.ApplySchema)
	assert.False(t, cfg.Profile.CacheEnabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("MAX_PAGE_SIZE", "5")
	t.Setenv("API_PREFIX", "/v2/")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Pagination.PageSize)
	assert.Equal(t, 25, cfg.Pagination.MaxPageSize)
	assert.Equal(t, "/v2", cfg.APIPrefix)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
