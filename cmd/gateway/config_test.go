package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_DefaultsRequireUpstream(t *testing.T) {
	_, err := loadConfig("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "UpstreamURL")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GATEWAY_UPSTREAM_URL", "http://localhost:9000")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	want := defaultConfig()
	want.UpstreamURL = "http://localhost:9000"
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"listen_addr": ":9090",
		"upstream_url": "http://upstream:8081",
		"debounce": {"rate": "250ms", "key_header": "X-Api-Key"},
		"rate": {"runs_per_second": 0.5, "burst": 1},
		"stats": {"backend": "memory", "track_keys": true}
	}`)
	t.Setenv("GATEWAY_DEBOUNCE__RATE", "400ms")
	t.Setenv("GATEWAY_RATE__ENABLED", "false")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "http://upstream:8081", cfg.UpstreamURL)
	assert.Equal(t, 400*time.Millisecond, cfg.Debounce.Rate, "env sobrescreve o arquivo")
	assert.Equal(t, "X-Api-Key", cfg.Debounce.KeyHeader)
	assert.False(t, cfg.Rate.Enabled)
	assert.Equal(t, 0.5, cfg.Rate.RunsPerSecond)
	assert.Equal(t, 1, cfg.Rate.Burst)
	assert.Equal(t, "memory", cfg.Stats.Backend)
	assert.True(t, cfg.Stats.TrackKeys)
	// não informado no arquivo: mantém o default
	assert.Equal(t, 15*time.Minute, cfg.Debounce.IdleTTL)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "chave desconhecida",
			content: `{"upstream_url": "http://u", "unknown_field": 1}`,
			wantErr: "decode config",
		},
		{
			name:    "redis sem endereço",
			content: `{"upstream_url": "http://u", "stats": {"backend": "redis"}}`,
			wantErr: "RedisAddr",
		},
		{
			name:    "backend inválido",
			content: `{"upstream_url": "http://u", "stats": {"backend": "postgres"}}`,
			wantErr: "Backend",
		},
		{
			name:    "burst zero",
			content: `{"upstream_url": "http://u", "rate": {"burst": 0}}`,
			wantErr: "Burst",
		},
		{
			name:    "json inválido",
			content: `{`,
			wantErr: "load config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
