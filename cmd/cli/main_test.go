package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/cli"
)

func TestRun_EvaluatesDocument(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := `
node "ConstF32" {
  label = "a"
  input "F32" "value" {
    value = 6
  }
}

node "MulF32" {
  label = "product"
  input "F32" "lhs" {}
  input "F32" "rhs" {
    value = 7
  }
  output "F32" "result" {}
}

connection {
  source {
    node   = 0
    socket = "value"
  }
  destination {
    node   = 1
    socket = "lhs"
  }
}
`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(doc), 0600), "failed to set up test file")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{filePath})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "1 product.result = 42")
}

func TestRun_ParseFailureIsReported(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
node "ConstF32" {
  input "F32" "value" {
	// Missing closing braces here
`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, []string{filePath})

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "failed to parse document")
	require.Contains(t, out.String(), "Error: Unclosed configuration block")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
