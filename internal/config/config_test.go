package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	d := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("log-level", d.LogLevel, "")
	fs.Bool("strict", d.Strict, "")
	fs.Int("healthcheck-port", d.HealthcheckPort, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowgrid.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
	assert.True(t, cfg.Evaluate)
}

func TestLoadLayers(t *testing.T) {
	path := writeTOML(t, `
document = "graph.hcl"
log-level = "warn"
healthcheck-port = 8080
strict = true
`)
	t.Setenv("FLOWGRID_LOG_LEVEL", "error")
	t.Setenv("FLOWGRID_OUTPUT_FORMAT", "json")

	cfg, err := Load(flags(t, "--config", path, "--healthcheck-port", "9090"))
	require.NoError(t, err)

	assert.Equal(t, "graph.hcl", cfg.Document, "from file")
	assert.True(t, cfg.Strict, "unchanged flag keeps the file value")
	assert.Equal(t, "error", cfg.LogLevel, "env overrides file")
	assert.Equal(t, "json", cfg.OutputFormat, "env key maps underscores to dashes")
	assert.Equal(t, 9090, cfg.HealthcheckPort, "flag overrides file")
	assert.Equal(t, "text", cfg.LogFormat, "default survives")
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("FLOWGRID_LOG_LEVEL", "error")

	cfg, err := Load(flags(t, "--log-level", "debug"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(flags(t, "--config", filepath.Join(t.TempDir(), "absent.toml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(flags(t, "--config", writeTOML(t, "document = ")))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Document = "graph.json"
		return c
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "missing document",
			mutate:  func(c *Config) { c.Document = "" },
			wantErr: []string{"a document path is required"},
		},
		{
			name:    "bad formats",
			mutate:  func(c *Config) { c.Format = "yaml"; c.OutputFormat = "xml" },
			wantErr: []string{`invalid format "yaml"`, `invalid output-format "xml"`},
		},
		{
			name:    "bad logging",
			mutate:  func(c *Config) { c.LogLevel = "loud"; c.LogFormat = "xml" },
			wantErr: []string{`invalid log-level "loud"`, `invalid log-format "xml"`},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.HealthcheckPort = 70000 },
			wantErr: []string{"invalid healthcheck-port 70000"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if len(tc.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tc.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
