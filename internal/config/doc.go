// Package config loads the application settings. Values are layered, each
// layer overriding the one before: built-in defaults, an optional TOML file,
// FLOWGRID_ environment variables, and command-line flags.
package config
