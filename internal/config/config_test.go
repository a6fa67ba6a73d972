package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_PATH", "/tmp/billing.db")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("CUSTOMER_PORTAL_RETURN_URL", "https://app.example/account")
	t.Setenv("BACKEND_ADDR", ":8080")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sk_test_123", cfg.StripeSecretKey)
	assert.Equal(t, "whsec_123", cfg.StripeWebhookSecret)
	assert.Equal(t, "eur", cfg.BaseCurrency)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "vismo-backend", cfg.JWTIssuer)
}

func TestLoadFromEnvAccumulatesMissing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestLoadFromEnvPortFallback(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BACKEND_ADDR", "")
	t.Setenv("PORT", "9090")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
}

func TestLoadFromEnvBaseCurrencyNormalized(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BASE_CURRENCY", " USD ")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "usd", cfg.BaseCurrency)
}
