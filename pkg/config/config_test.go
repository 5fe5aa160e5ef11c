package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.True(t, cfg.Store.SeedFixtures)
	assert.Equal(t, SessionFile, cfg.Session.Driver)
	assert.Equal(t, "123456", cfg.Auth.SharedSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, time.Minute, cfg.RateLimit.LoginWindow)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"STORE_DRIVER":    "SQLite",
		"SESSION_DRIVER":  "redis",
		"JWT_EXPIRATION":  "not-a-duration",
		"ALLOWED_ORIGINS": "http://a.test, ,http://b.test",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, SessionRedis, cfg.Session.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestRejectsUnknownDrivers(t *testing.T) {
	_, err := fromViper(newTestViper(map[string]interface{}{"STORE_DRIVER": "mongo"}))
	require.Error(t, err)

	_, err = fromViper(newTestViper(map[string]interface{}{"SESSION_DRIVER": "cookie"}))
	require.Error(t, err)
}
