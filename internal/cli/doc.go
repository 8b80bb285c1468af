// Package cli turns command-line arguments into a validated configuration.
package cli
