package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:TEST")
	t.Setenv("ADMIN_JWT_SECRET", "0123456789abcdef0123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "uv_admin", cfg.Admin.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Admin.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Admin.NonceTTL)
	assert.Equal(t, 24*time.Hour, cfg.Telegram.InitDataTTL)
	assert.Equal(t, []string{"public", "admin", "private"}, cfg.Postgres.AdminSchemas)
	assert.Equal(t, NonceStorePostgres, cfg.Admin.NonceStore)
}

func TestLoad_DevModeIsExplicit(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", " DEV ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
}

func TestLoad_RejectsUnknownEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "staging")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV")
}

func TestLoad_ShortSecretInProd(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("APP_ENV", "dev")
	_, err = Load()
	require.NoError(t, err)
}

func TestLoad_RedisStoreNeedsAddr(t *testing.T) {
	setRequired(t)
	t.Setenv("NONCE_STORE", "redis")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NonceStoreRedis, cfg.Admin.NonceStore)
}

func TestLoad_AdminSchemasTrimmed(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_SCHEMAS", " admin , ,public")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "public"}, cfg.Postgres.AdminSchemas)
}
