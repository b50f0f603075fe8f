package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("BOOKSTORE_SERVER_PORT", "9090")
	t.Setenv("BOOKSTORE_DATABASE_DRIVER", "sqlite")
	t.Setenv("BOOKSTORE_JWT_SECRET", "s3cret")
	t.Setenv("BOOKSTORE_ADMIN_API_KEY", "admin-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "admin-key", cfg.Admin.APIKey)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTTL)
	assert.False(t, cfg.Redis.Enabled)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Mode: "release"},
		Database: DatabaseConfig{Driver: "postgres"},
		JWT:      JWTConfig{AccessTTL: time.Hour, RefreshTTL: time.Hour},
	}
	assert.Error(t, cfg.Validate(), "release mode requires a jwt secret")

	cfg.Server.Mode = "debug"
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.JWT.Secret)

	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	cfg.Server.Mode = "prod"
	assert.Error(t, cfg.Validate())
}
