package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE", "Memory")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	LoadEnv()

	cfg := Load("cart")

	assert.Equal(t, "cart", cfg.Service)
	assert.Equal(t, "3002", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.ClientTimeout)
	assert.Equal(t, 8, cfg.MaxSteps)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("SUPERNOVA_SET", "value")
	LoadEnv()

	assert.Equal(t, "value", GetEnv("SUPERNOVA_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SUPERNOVA_UNSET_KEY", "fallback"))
}
