package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-vault/pkg/simplevault/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory://", cfg.StorageURL)
	assert.Equal(t, 300, cfg.RateLimitRPM)
	assert.Equal(t, int64(256<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_URL", "file:///tmp/vault-data")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_RPM", "60")

	cfg, err := config.Load(config.WithEnv())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "file:///tmp/vault-data", cfg.StorageURL)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 60, cfg.RateLimitRPM)
	// untouched values keep their defaults
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opt     config.Option
		wantErr string
	}{
		{
			name: "missing port",
			opt: func(c *config.ServerConfig) error {
				c.Port = ""
				return nil
			},
			wantErr: "port is required",
		},
		{
			name: "missing storage url",
			opt: func(c *config.ServerConfig) error {
				c.StorageURL = ""
				return nil
			},
			wantErr: "storage_url is required",
		},
		{
			name: "scheme-less storage url",
			opt: func(c *config.ServerConfig) error {
				c.StorageURL = "/var/lib/vault"
				return nil
			},
			wantErr: "must carry a scheme",
		},
		{
			name: "unsupported scheme",
			opt: func(c *config.ServerConfig) error {
				c.StorageURL = "redis://localhost:6379"
				return nil
			},
			wantErr: "unsupported storage scheme",
		},
		{
			name: "non-positive rate limit",
			opt: func(c *config.ServerConfig) error {
				c.RateLimitRPM = 0
				return nil
			},
			wantErr: "rate_limit_rpm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.opt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildBackend_Memory(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	backend, err := cfg.BuildBackend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "memory", backend.Name())
}

func TestBuildBackend_File(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(func(c *config.ServerConfig) error {
		c.StorageURL = "file://" + dir
		return nil
	})
	require.NoError(t, err)

	backend, err := cfg.BuildBackend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fs", backend.Name())
}

func TestBuildService(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
