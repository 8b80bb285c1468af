package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flowgrid/internal/codec"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/hcldoc"
	"github.com/vk/flowgrid/internal/jsondoc"
)

// formatFor picks a document format. An explicit format wins over the
// file extension.
func formatFor(path, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".hcl":
		return "hcl", nil
	}
	return "", fmt.Errorf("cannot detect the format of %s: set it with --format", path)
}

// load reads and deserializes the configured document. Diagnostics are
// written to the output; an error is returned only when no graph could be
// built at all.
func (a *App) load(ctx context.Context) (*flow.Graph, hcl.Diagnostics, error) {
	logger := ctxlog.FromContext(ctx)
	path := a.config.Document

	format, err := formatFor(path, a.config.Format)
	if err != nil {
		return nil, nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}
	logger.Debug("Document read.", "path", path, "format", format, "bytes", len(src))

	var doc *codec.Document
	var diags hcl.Diagnostics
	switch format {
	case "hcl":
		doc, diags = hcldoc.Decode(ctx, path, src)
	default:
		doc, diags = jsondoc.Decode(bytes.NewReader(src))
	}

	var g *flow.Graph
	if doc != nil {
		var more hcl.Diagnostics
		g, more = codec.Deserialize(ctx, a.registry, doc)
		diags = append(diags, more...)
	}

	a.metrics.DocumentLoaded(diags)
	a.writeDiagnostics(map[string]*hcl.File{path: {Bytes: src}}, diags)

	if g == nil {
		return nil, diags, fmt.Errorf("failed to parse document %s", path)
	}
	logger.Info("Document loaded.", "path", path, "nodes", g.Len(), "diagnostics", len(diags))
	return g, diags, nil
}

func (a *App) writeDiagnostics(files map[string]*hcl.File, diags hcl.Diagnostics) {
	if len(diags) == 0 {
		return
	}
	for _, d := range diags {
		if d.Severity == hcl.DiagError {
			a.logger.Error("Document diagnostic.", "summary", d.Summary, "detail", d.Detail)
		} else {
			a.logger.Warn("Document diagnostic.", "summary", d.Summary, "detail", d.Detail)
		}
	}
	wr := hcl.NewDiagnosticTextWriter(a.outW, files, 0, false)
	if err := wr.WriteDiagnostics(diags); err != nil {
		a.logger.Warn("Failed to write diagnostics.", "error", err)
	}
}
