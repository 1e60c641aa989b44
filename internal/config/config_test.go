package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, 10, cfg.Extraction.HeaderSearchWindow)
	assert.Equal(t, 6, cfg.Extraction.DataStartRow)
	assert.Equal(t, 3, cfg.Extraction.MaxEmptyRows)
	assert.Equal(t, 4, cfg.Extraction.InsightWorkers)
	assert.Equal(t, 3, cfg.Extraction.InsightRetries)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
extraction:
  insight_workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Extraction.InsightWorkers)
	assert.Equal(t, 6, cfg.Extraction.DataStartRow, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-test")
	t.Setenv("RESULTS_DIR", "/tmp/results")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "gpt-test", cfg.LLM.Deployment)
	assert.Equal(t, "/tmp/results", cfg.Storage.ResultsDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"port out of range", func(c *Config) { c.Server.Port = 0 }, true},
		{"zero search window", func(c *Config) { c.Extraction.HeaderSearchWindow = 0 }, true},
		{"zero data start row", func(c *Config) { c.Extraction.DataStartRow = 0 }, true},
		{"zero workers", func(c *Config) { c.Extraction.InsightWorkers = 0 }, true},
		{"zero retries", func(c *Config) { c.Extraction.InsightRetries = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
