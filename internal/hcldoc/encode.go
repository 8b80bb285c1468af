package hcldoc

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/flowgrid/internal/codec"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/zclconf/go-cty/cty"
)

// Encode writes doc as formatted HCL.
func Encode(w io.Writer, doc *codec.Document) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, n := range doc.Nodes {
		if i > 0 {
			body.AppendNewline()
		}
		nb := body.AppendNewBlock("node", []string{n.Type}).Body()
		if n.Label != "" {
			nb.SetAttributeValue("label", cty.StringVal(n.Label))
		}
		writeSockets(nb, "input", n.Inputs)
		writeSockets(nb, "output", n.Outputs)
	}

	for _, c := range doc.Connections {
		body.AppendNewline()
		cb := body.AppendNewBlock("connection", nil).Body()
		writeEndpoint(cb.AppendNewBlock("source", nil).Body(), c.Source)
		writeEndpoint(cb.AppendNewBlock("destination", nil).Body(), c.Destination)
	}

	if _, err := w.Write(hclwrite.Format(f.Bytes())); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func writeSockets(body *hclwrite.Body, blockType string, recs []codec.SocketRecord) {
	for _, s := range recs {
		sb := body.AppendNewBlock(blockType, []string{s.Type, s.Label}).Body()
		if !s.Value.IsNull() {
			sb.SetAttributeValue("value", s.Value)
		}
	}
}

func writeEndpoint(body *hclwrite.Body, a flow.Address) {
	body.SetAttributeValue("node", cty.NumberIntVal(int64(a.Node)))
	body.SetAttributeValue("socket", cty.StringVal(a.Socket))
	if len(a.Indices) == 0 {
		return
	}
	indices := make([]cty.Value, len(a.Indices))
	for i, idx := range a.Indices {
		indices[i] = cty.NumberIntVal(int64(idx))
	}
	body.SetAttributeValue("indices", cty.ListVal(indices))
}
