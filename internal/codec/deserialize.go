package codec

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/flow"
)

// Deserialize rebuilds the graph described by doc. The returned graph has
// one entry per node record; entries that could not be built are nil.
func Deserialize(ctx context.Context, f Factories, doc *Document) (*flow.Graph, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	g := flow.NewGraph()
	var diags hcl.Diagnostics

	if doc == nil {
		return g, diags.Append(errorf(hcl.Range{}, "Empty document", "Document root must be an object."))
	}

	for i, rec := range doc.Nodes {
		n, nodeDiags := buildNode(f, i, rec)
		diags = append(diags, nodeDiags...)
		g.Add(n)
	}

	connected := 0
	for i, conn := range doc.Connections {
		if err := g.Connect(conn.Source, conn.Destination); err != nil {
			diags = diags.Append(errorf(conn.Range, connectionSummary(err), "Connection %d is skipped: %s.", i, err))
			continue
		}
		connected++
	}

	logger.Debug("Deserialized graph document.",
		"nodes", g.Len(),
		"connections", connected,
		"skipped_connections", len(doc.Connections)-connected,
		"diagnostics", len(diags),
	)
	return g, diags
}

func buildNode(f Factories, index int, rec NodeRecord) (*flow.Node, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if rec.Type == "" {
		return nil, diags.Append(errorf(rec.Range, "Missing node type", "Node %d has no type.", index))
	}
	ctor, ok := f.Node(rec.Type)
	if !ok {
		return nil, diags.Append(errorf(rec.Range, "Unknown node type", "Document gave unknown node type: %s.", rec.Type))
	}

	n := ctor(rec.Label)
	diags = append(diags, decodeSockets(f, n, index, flow.Input, rec.Inputs)...)
	diags = append(diags, decodeSockets(f, n, index, flow.Output, rec.Outputs)...)
	return n, diags
}

func decodeSockets(f Factories, n *flow.Node, index int, dir flow.Direction, recs []SocketRecord) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, rec := range recs {
		if rec.Type == "" || rec.Label == "" {
			diags = diags.Append(errorf(rec.Range, "Malformed socket",
				"Node %d (%s) has an %s without a type or label.", index, n.TypeTag(), dir))
			continue
		}

		s := n.Input(rec.Label)
		if dir == flow.Output {
			s = n.Output(rec.Label)
		}
		if s == nil {
			shape, ok := f.Socket(rec.Type)
			if !ok {
				diags = diags.Append(errorf(rec.Range, "Unknown socket type",
					"Document gave unknown type for node socket: %s (%s %q of node %d).", rec.Type, dir, rec.Label, index))
				continue
			}
			s = n.Declare(flow.Declaration{Direction: dir, Label: rec.Label, Shape: shape})
		} else if s.TypeTag() != rec.Type {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  "Socket type differs",
				Detail:   fmt.Sprintf("Document records %s %q of node %d as %s, but the node declares %s.", dir, rec.Label, index, rec.Type, s.TypeTag()),
				Subject:  subject(rec.Range),
			})
		}

		if err := s.DecodeValue(rec.Value); err != nil {
			diags = diags.Append(errorf(rec.Range, "Invalid socket value",
				"Could not read the value of %s %q of node %d: %s.", dir, rec.Label, index, err))
		}
	}
	return diags
}

func connectionSummary(err error) string {
	switch {
	case errors.Is(err, flow.ErrNodeOutOfRange):
		return "Connection node out of bounds"
	case errors.Is(err, flow.ErrPlaceholder):
		return "Connection to unreadable node"
	case errors.Is(err, flow.ErrUnknownSocket):
		return "Connection to unknown socket"
	case errors.Is(err, flow.ErrNotArray), errors.Is(err, flow.ErrIndexOutOfRange):
		return "Invalid socket array index"
	case errors.Is(err, flow.ErrPassThroughLoop):
		return "Pass-through loop"
	default:
		return "Invalid connection"
	}
}

func errorf(rng hcl.Range, summary, format string, args ...any) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  subject(rng),
	}
}

func subject(rng hcl.Range) *hcl.Range {
	if rng.Filename == "" {
		return nil
	}
	return &rng
}
