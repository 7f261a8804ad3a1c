package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CART_STORE", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cart.Store)
	assert.Equal(t, 3, cfg.Session.ResolveAttempts)
	assert.Equal(t, 10*time.Second, cfg.Checkout.CommitTimeout)
	assert.Contains(t, cfg.Database.DSN(), "dbname=")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CART_STORE", "Redis")
	t.Setenv("CHECKOUT_COMMIT_TIMEOUT", "2s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/toko")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cart.Store)
	assert.Equal(t, 2*time.Second, cfg.Checkout.CommitTimeout)
	assert.Equal(t, "postgres://u:p@db/toko", cfg.Database.DSN())
}

func TestLoad_RejectsUnknownCartStore(t *testing.T) {
	t.Setenv("CART_STORE", "disk")

	_, err := Load()
	assert.Error(t, err)
}
