package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "trendora", cfg.Database.Name)
	assert.Equal(t, 30, cfg.JWT.ExpiryDays)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "./uploads", cfg.App.UploadDir)
	assert.Equal(t, "./public", cfg.App.StaticDir)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "supersecret")
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("STATIC_DIR", "/srv/trendora/public")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "supersecret", cfg.JWT.Secret)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "/srv/trendora/public", cfg.App.StaticDir)
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: "6380"}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
