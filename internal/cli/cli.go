package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/vk/flowgrid/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns the layered config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*config.Config, bool, error) {
	slog.Debug("CLI parser started.")
	fs := newFlagSet(output)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg, err := config.Load(fs)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	// The positional argument counts as a flag: it beats env and file.
	if !fs.Changed("document") && fs.NArg() > 0 {
		cfg.Document = fs.Arg(0)
	}
	slog.Debug("Document path determined.", "path", cfg.Document)

	if cfg.Document == "" {
		slog.Debug("No document provided, printing usage and exiting.")
		fs.Usage()
		return nil, true, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

func newFlagSet(output io.Writer) *pflag.FlagSet {
	d := config.Default()
	fs := pflag.NewFlagSet("flowgrid", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SortFlags = false

	fs.Usage = func() {
		fmt.Fprint(output, `
Flowgrid - evaluates reactive dataflow graph documents.

Usage:
  flowgrid [options] [DOCUMENT]

Arguments:
  DOCUMENT
    Path to a .json or .hcl graph document.

Options:
`)
		fs.PrintDefaults()
	}

	fs.StringP("config", "c", "", "TOML config file. Defaults to "+config.DefaultFile+" when present.")
	fs.StringP("document", "d", d.Document, "Path to the graph document.")
	fs.String("format", d.Format, "Document format: 'json' or 'hcl'. Detected from the extension when empty.")
	fs.StringP("output", "o", d.Output, "Write the evaluated graph to this file.")
	fs.String("output-format", d.OutputFormat, "Format of --output. Detected from its extension when empty.")
	fs.Bool("evaluate", d.Evaluate, "Compute every node and print the outputs.")
	fs.Bool("strict", d.Strict, "Exit with an error when the document has error diagnostics.")
	fs.BoolP("watch", "w", d.Watch, "Reload and re-evaluate the document when it changes.")
	fs.String("log-level", d.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.String("log-format", d.LogFormat, "Log output format. Options: 'text' or 'json'.")
	fs.Int("healthcheck-port", d.HealthcheckPort, "Port for the /health and /metrics server. 0 is disabled.")
	return fs
}
