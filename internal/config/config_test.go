package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "kyvex")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "kyvex_db")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 168*time.Hour, cfg.Security.TokenExpiry)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, "https://api.dicebear.com", cfg.Avatar.BaseURL)
	assert.True(t, cfg.Gateway.Enabled)
	assert.Equal(t, 256, cfg.Gateway.SendBufferSize)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("TOKEN_EXPIRY_HOURS", "24")
	t.Setenv("GATEWAY_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.Security.TokenExpiry)
	assert.False(t, cfg.Gateway.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing db password", map[string]string{"DB_PASSWORD": ""}},
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"short jwt secret", map[string]string{"JWT_SECRET": "too-short"}},
		{"bad bcrypt cost", map[string]string{"BCRYPT_COST": "99"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"zero send buffer", map[string]string{"GATEWAY_SEND_BUFFER": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		User:     "kyvex",
		Password: "secret",
		Name:     "kyvex_db",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=kyvex password=secret dbname=kyvex_db sslmode=require",
		cfg.GetDSN(),
	)
}
