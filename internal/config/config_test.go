package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, []string{"rule", "external"}, cfg.Scoring.Blend)
	assert.Equal(t, 70, cfg.Scoring.DangerousThreshold)
	assert.Equal(t, 40, cfg.Scoring.SuspiciousThreshold)
	assert.True(t, cfg.Scoring.Deterministic)
	assert.Equal(t, 10, cfg.Learning.RetrainEvery)
	assert.Equal(t, time.Hour, cfg.Learning.RetrainInterval)
	assert.Equal(t, 5*time.Minute, cfg.Verification.RefreshInterval)
	assert.False(t, cfg.Classifier.Enabled)
	assert.Empty(t, cfg.Admin.APIKeys)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9000
scoring:
  blend: [rule, learned, verification]
  dangerous_threshold: 75
classifier:
  enabled: true
  timeout: 2s
`)
	t.Setenv("INSAFE_REDIS_HOST", "cache.internal")
	t.Setenv("INSAFE_ADMIN_API_KEYS", "k1,k2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, []string{"rule", "learned", "verification"}, cfg.Scoring.Blend)
	assert.Equal(t, 75, cfg.Scoring.DangerousThreshold)
	assert.True(t, cfg.Classifier.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"k1", "k2"}, cfg.Admin.APIKeys)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown blend signal", "scoring:\n  blend: [rule, astrology]\n"},
		{"inverted thresholds", "scoring:\n  dangerous_threshold: 30\n  suspicious_threshold: 60\n"},
		{"threshold above 100", "scoring:\n  dangerous_threshold: 120\n"},
		{"non-positive retrain", "learning:\n  retrain_every: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, DBName: "insafe", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/insafe?sslmode=disable", c.DSN())
}
