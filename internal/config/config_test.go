package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VERIFY_BASE_URL", "http://verify.local")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, RenewalModeLastWriterWins, cfg.RenewalMode)
}

func TestLoadRejectsRefreshNotLongerThanAccess(t *testing.T) {
	t.Setenv("VERIFY_BASE_URL", "http://verify.local")
	t.Setenv("JWT_ACCESS_TTL", "1h")
	t.Setenv("JWT_REFRESH_TTL", "30m")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRenewalMode(t *testing.T) {
	t.Setenv("VERIFY_BASE_URL", "http://verify.local")
	t.Setenv("RENEWAL_MODE", "optimistic")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("VERIFY_BASE_URL", "http://verify.local")
	t.Setenv("SESSION_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresVerifyBaseURL(t *testing.T) {
	t.Setenv("VERIFY_BASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadAllowsMockVerifierWithoutBaseURL(t *testing.T) {
	t.Setenv("VERIFY_BASE_URL", "")
	t.Setenv("MOCK_VERIFIER", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MockVerifier)
}

func TestLoadProdGuards(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("VERIFY_BASE_URL", "http://verify.local")

	_, err := Load()
	require.Error(t, err, "default JWT secret must be rejected in prod")

	t.Setenv("JWT_SECRET", "real-secret")
	_, err = Load()
	require.Error(t, err, "default verify api key must be rejected in prod")

	t.Setenv("VERIFY_API_KEY", "real-api-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.AppEnv)
}

func TestLoadStrictMode(t *testing.T) {
	t.Setenv("VERIFY_BASE_URL", "http://verify.local")
	t.Setenv("RENEWAL_MODE", "strict")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, RenewalModeStrict, cfg.RenewalMode)
}
