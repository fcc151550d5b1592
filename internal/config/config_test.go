package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QWEATHER_PROJECT_ID", "test-project")
	t.Setenv("QWEATHER_KEY_ID", "test-key-id")
	t.Setenv("QWEATHER_PRIVATE_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, "https://api.qweather.com", cfg.QWeather.APIHost)
	assert.Equal(t, "https://geoapi.qweather.com", cfg.QWeather.GeoAPIHost)
	assert.Equal(t, "Asia/Shanghai", cfg.QWeather.TimeZone)
	assert.Equal(t, 10, cfg.QWeather.RequestTimeoutSeconds)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 200, cfg.RateLimit.MaxRequestsPerDay)
	assert.Equal(t, []string{"/weather/get", "/geo/lookup"}, cfg.RateLimit.Paths)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("QWEATHER_PROJECT_ID", "test-project")
	t.Setenv("QWEATHER_KEY_ID", "test-key-id")
	// QWEATHER_PRIVATE_KEY deliberately unset

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestCacheConfig_Valkey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_TYPE", "valkey")
	t.Setenv("VALKEY_ADDRESS", "localhost:6379")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	expected := ValkeyConfig{
		Address: "localhost:6379",
		TLS:     true, // default
	}
	assert.Equal(t, expected, cfg.Cache.Valkey)
}

func TestCacheConfig_ValkeyRequiresAddress(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_TYPE", "valkey")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "VALKEY_ADDRESS")
}

func TestCacheConfig_UnknownType(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_TYPE", "memcached")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "unknown cache type")
}

func TestRateLimitConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS_PER_DAY", "50")
	t.Setenv("RATE_LIMIT_PATHS", "/weather/get")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50, cfg.RateLimit.MaxRequestsPerDay)
	assert.Equal(t, []string{"/weather/get"}, cfg.RateLimit.Paths)
}

func TestRateLimitConfig_InvalidLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS_PER_DAY", "0")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "RATE_LIMIT_MAX_REQUESTS_PER_DAY")
}
