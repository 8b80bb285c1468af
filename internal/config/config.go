package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read when present and no --config flag names another file.
const DefaultFile = "flowgrid.toml"

// EnvPrefix marks the environment variables that are read. FLOWGRID_LOG_LEVEL
// sets log-level.
const EnvPrefix = "FLOWGRID_"

// Formats are the accepted document formats. Empty means "by file extension".
var Formats = []string{"", "json", "hcl"}

// Config holds all settings for one run.
type Config struct {
	Document        string `koanf:"document"`
	Format          string `koanf:"format"`
	Output          string `koanf:"output"`
	OutputFormat    string `koanf:"output-format"`
	Evaluate        bool   `koanf:"evaluate"`
	Strict          bool   `koanf:"strict"`
	Watch           bool   `koanf:"watch"`
	LogLevel        string `koanf:"log-level"`
	LogFormat       string `koanf:"log-format"`
	HealthcheckPort int    `koanf:"healthcheck-port"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Evaluate:  true,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func (c Config) asMap() map[string]interface{} {
	return map[string]interface{}{
		"document":         c.Document,
		"format":           c.Format,
		"output":           c.Output,
		"output-format":    c.OutputFormat,
		"evaluate":         c.Evaluate,
		"strict":           c.Strict,
		"watch":            c.Watch,
		"log-level":        c.LogLevel,
		"log-format":       c.LogFormat,
		"healthcheck-port": c.HealthcheckPort,
	}
}

// Load layers the configuration sources and unmarshals the result. A "config"
// flag on f names the TOML file; that file must exist. Without it the
// default file is read if it exists. f may be nil.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Default().asMap()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path, explicit := configFile(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment, FLOWGRID_OUTPUT_FORMAT=hcl sets output-format
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func configFile(f *pflag.FlagSet) (string, bool) {
	if f == nil {
		return DefaultFile, false
	}
	flag := f.Lookup("config")
	if flag == nil || !flag.Changed {
		return DefaultFile, false
	}
	return flag.Value.String(), true
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Document == "" {
		errs = append(errs, errors.New("a document path is required"))
	}
	for _, f := range []struct{ key, value string }{{"format", c.Format}, {"output-format", c.OutputFormat}} {
		if !slices.Contains(Formats, f.value) {
			errs = append(errs, fmt.Errorf("invalid %s %q: must be 'json' or 'hcl'", f.key, f.value))
		}
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", c.LogFormat))
	}
	if c.HealthcheckPort < 0 || c.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck-port %d", c.HealthcheckPort))
	}
	return errors.Join(errs...)
}

// mapProvider feeds a plain map to koanf.
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
