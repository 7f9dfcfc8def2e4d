package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000", cfg.Backend.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)
	assert.True(t, cfg.Analysis.Lighthouse)
	assert.False(t, cfg.Analysis.PreflightRobots)
	assert.Equal(t, 1000.0, cfg.Analysis.SlowResponseMs)
	assert.Equal(t, 15, cfg.Analysis.TLSWarningDays)
	assert.Equal(t, CSVSourceBackend, cfg.Export.CSVSource)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
backend:
  base_url: "https://audit.internal:8443"
  timeout: 45s
  requests_per_second: 2
analysis:
  lighthouse: false
  slow_response_ms: 2500
export:
  csv_source: local
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("WPAUDIT_LOGGING_LEVEL", "debug")
	t.Setenv("WPAUDIT_USERNAME", "admin")
	t.Setenv("WPAUDIT_PASSWORD", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://audit.internal:8443", cfg.Backend.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2.0, cfg.Backend.RequestsPerSecond)
	assert.False(t, cfg.Analysis.Lighthouse)
	assert.Equal(t, 2500.0, cfg.Analysis.SlowResponseMs)
	assert.Equal(t, CSVSourceLocal, cfg.Export.CSVSource)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "admin", cfg.Credentials.Username)
	assert.Equal(t, "s3cret", cfg.Credentials.Password)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Backend:  BackendConfig{BaseURL: "http://localhost:5000"},
			Analysis: AnalysisConfig{SlowResponseMs: 1000, TLSWarningDays: 15},
			Export:   ExportConfig{CSVSource: CSVSourceBackend},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "relative base url", mutate: func(c *Config) { c.Backend.BaseURL = "localhost" }, wantErr: true},
		{name: "non-http base url", mutate: func(c *Config) { c.Backend.BaseURL = "ftp://localhost" }, wantErr: true},
		{name: "zero slow response threshold", mutate: func(c *Config) { c.Analysis.SlowResponseMs = 0 }, wantErr: true},
		{name: "negative tls warning days", mutate: func(c *Config) { c.Analysis.TLSWarningDays = -1 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Backend.Timeout = -time.Second }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.Backend.RequestsPerSecond = -1 }, wantErr: true},
		{name: "unknown csv source", mutate: func(c *Config) { c.Export.CSVSource = "s3" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
