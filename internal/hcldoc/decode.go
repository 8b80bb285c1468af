package hcldoc

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/flowgrid/internal/codec"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot is the schema of a document file.
type fileRoot struct {
	Nodes       []*nodeBlock       `hcl:"node,block"`
	Connections []*connectionBlock `hcl:"connection,block"`
}

type nodeBlock struct {
	Type      string         `hcl:"type,label"`
	Label     string         `hcl:"label,optional"`
	Inputs    []*socketBlock `hcl:"input,block"`
	Outputs   []*socketBlock `hcl:"output,block"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type socketBlock struct {
	Type      string         `hcl:"type,label"`
	Label     string         `hcl:"label,label"`
	Value     hcl.Expression `hcl:"value,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type connectionBlock struct {
	Source      *endpointBlock `hcl:"source,block"`
	Destination *endpointBlock `hcl:"destination,block"`
	DeclRange   hcl.Range      `hcl:",def_range"`
}

type endpointBlock struct {
	Node    int    `hcl:"node"`
	Socket  string `hcl:"socket"`
	Indices []int  `hcl:"indices,optional"`
}

// Decode parses src, naming it filename in diagnostics. Decoding continues
// past schema errors; a nil document is returned only for syntax errors.
func Decode(ctx context.Context, filename string, src []byte) (*codec.Document, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL document decode started.", "filename", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var root fileRoot
	diags = append(diags, gohcl.DecodeBody(file.Body, nil, &root)...)

	doc := &codec.Document{}
	for _, nb := range root.Nodes {
		if nb == nil {
			continue
		}
		rec := codec.NodeRecord{Type: nb.Type, Label: nb.Label, Range: nb.DeclRange}
		for _, sb := range nb.Inputs {
			s, sd := decodeSocket(ctx, sb)
			diags = append(diags, sd...)
			rec.Inputs = append(rec.Inputs, s)
		}
		for _, sb := range nb.Outputs {
			s, sd := decodeSocket(ctx, sb)
			diags = append(diags, sd...)
			rec.Outputs = append(rec.Outputs, s)
		}
		doc.Nodes = append(doc.Nodes, rec)
	}

	for _, cb := range root.Connections {
		if cb == nil {
			continue
		}
		if cb.Source == nil || cb.Destination == nil {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Malformed connection",
				Detail:   "A connection block needs both a source and a destination block.",
				Subject:  cb.DeclRange.Ptr(),
			})
			continue
		}
		doc.Connections = append(doc.Connections, codec.ConnectionRecord{
			Source:      address(cb.Source),
			Destination: address(cb.Destination),
			Range:       cb.DeclRange,
		})
	}

	logger.Debug("HCL document decode complete.", "nodes", len(doc.Nodes), "connections", len(doc.Connections), "diagnostics", len(diags))
	return doc, diags
}

func decodeSocket(ctx context.Context, sb *socketBlock) (codec.SocketRecord, hcl.Diagnostics) {
	rec := codec.SocketRecord{Type: sb.Type, Label: sb.Label, Range: sb.DeclRange}
	if !isExprDefined(ctx, sb.Value, sb.Label) {
		return rec, nil
	}
	val, diags := sb.Value.Value(nil)
	if diags.HasErrors() {
		return rec, diags
	}
	if val.IsNull() {
		val = cty.NilVal
	}
	rec.Value = val
	return rec, diags
}

func address(e *endpointBlock) flow.Address {
	return flow.Address{Node: flow.NodeID(e.Node), Socket: e.Socket, Indices: e.Indices}
}

// isExprDefined reports whether an optional attribute was written in the
// source. gohcl fills omitted optional expressions with zero-width
// placeholders, so a nil check alone is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	defined := rng.End.Byte > rng.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", rng.String(),
		"is_defined", defined,
	)
	return defined
}
