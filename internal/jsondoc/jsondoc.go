// Package jsondoc reads and writes graph documents as JSON.
//
// The layout is
//
//	{
//	  "nodes": [{"type": "...", "label": "...", "inputs": [...], "outputs": [...]}],
//	  "connections": [{"source": {...}, "destination": {...}}]
//	}
//
// where each socket is {"type", "label", "value"} and each endpoint is
// {"nodeId", "socketLabel", "socketArrayIndices"}. Socket values are plain
// JSON; their cty type is implied by the JSON itself and converted to the
// socket's kind when the graph is rebuilt.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flowgrid/internal/codec"
	"github.com/vk/flowgrid/internal/flow"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type document struct {
	Nodes       []node       `json:"nodes"`
	Connections []connection `json:"connections"`
}

type node struct {
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Inputs  []socket `json:"inputs"`
	Outputs []socket `json:"outputs"`
}

type socket struct {
	Type  string          `json:"type"`
	Label string          `json:"label"`
	Value json.RawMessage `json:"value,omitempty"`
}

type connection struct {
	Source      endpoint `json:"source"`
	Destination endpoint `json:"destination"`
}

type endpoint struct {
	NodeID  *int   `json:"nodeId"`
	Label   string `json:"socketLabel"`
	Indices []int  `json:"socketArrayIndices"`
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *codec.Document) error {
	out := document{Nodes: []node{}, Connections: []connection{}}
	for _, n := range doc.Nodes {
		rec := node{Type: n.Type, Label: n.Label, Inputs: []socket{}, Outputs: []socket{}}
		for _, s := range n.Inputs {
			js, err := encodeSocket(s)
			if err != nil {
				return err
			}
			rec.Inputs = append(rec.Inputs, js)
		}
		for _, s := range n.Outputs {
			js, err := encodeSocket(s)
			if err != nil {
				return err
			}
			rec.Outputs = append(rec.Outputs, js)
		}
		out.Nodes = append(out.Nodes, rec)
	}
	for _, c := range doc.Connections {
		out.Connections = append(out.Connections, connection{
			Source:      encodeEndpoint(c.Source),
			Destination: encodeEndpoint(c.Destination),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

func encodeSocket(s codec.SocketRecord) (socket, error) {
	js := socket{Type: s.Type, Label: s.Label}
	if s.Value.IsNull() {
		return js, nil
	}
	raw, err := ctyjson.SimpleJSONValue{Value: s.Value}.MarshalJSON()
	if err != nil {
		return js, fmt.Errorf("failed to encode value of socket %q: %w", s.Label, err)
	}
	js.Value = raw
	return js, nil
}

func encodeEndpoint(a flow.Address) endpoint {
	id := int(a.Node)
	indices := a.Indices
	if indices == nil {
		indices = []int{}
	}
	return endpoint{NodeID: &id, Label: a.Socket, Indices: indices}
}

// Decode reads a document. It is as lenient as the codec: malformed entries
// are reported and replaced by empty records (nodes) or dropped
// (connections) so that node indices stay meaningful. A nil document is
// returned only when the input is not a JSON object at all.
func Decode(r io.Reader) (*codec.Document, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, diags.Append(errorf("Failed to read document", "%s.", err))
	}
	if !json.Valid(data) {
		return nil, diags.Append(errorf("Invalid JSON", "Document is not valid JSON."))
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, diags.Append(errorf("Invalid document", "Document root must be an object."))
	}

	doc := &codec.Document{}
	for i, raw := range array(root["nodes"], "nodes", &diags) {
		doc.Nodes = append(doc.Nodes, decodeNode(i, raw, &diags))
	}
	for i, raw := range array(root["connections"], "connections", &diags) {
		if c, ok := decodeConnection(i, raw, &diags); ok {
			doc.Connections = append(doc.Connections, c)
		}
	}
	return doc, diags
}

func decodeNode(index int, raw json.RawMessage, diags *hcl.Diagnostics) codec.NodeRecord {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// The codec reports the missing type.
		return codec.NodeRecord{}
	}
	rec := codec.NodeRecord{Type: str(fields["type"]), Label: str(fields["label"])}
	where := fmt.Sprintf("nodes[%d]", index)
	for _, s := range array(fields["inputs"], where+".inputs", diags) {
		rec.Inputs = append(rec.Inputs, decodeSocket(s, where, diags))
	}
	for _, s := range array(fields["outputs"], where+".outputs", diags) {
		rec.Outputs = append(rec.Outputs, decodeSocket(s, where, diags))
	}
	return rec
}

func decodeSocket(raw json.RawMessage, where string, diags *hcl.Diagnostics) codec.SocketRecord {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return codec.SocketRecord{}
	}
	rec := codec.SocketRecord{Type: str(fields["type"]), Label: str(fields["label"])}
	value := bytes.TrimSpace(fields["value"])
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return rec
	}
	var sv ctyjson.SimpleJSONValue
	if err := sv.UnmarshalJSON(value); err != nil {
		*diags = diags.Append(errorf("Invalid socket value", "Could not read the value of socket %q in %s: %s.", rec.Label, where, err))
		return rec
	}
	rec.Value = sv.Value
	return rec
}

func decodeConnection(index int, raw json.RawMessage, diags *hcl.Diagnostics) (codec.ConnectionRecord, bool) {
	var c connection
	if err := json.Unmarshal(raw, &c); err != nil {
		*diags = diags.Append(errorf("Malformed connection", "connections[%d] is not a valid connection: %s.", index, err))
		return codec.ConnectionRecord{}, false
	}
	if c.Source.NodeID == nil || c.Destination.NodeID == nil {
		*diags = diags.Append(errorf("Malformed connection", "connections[%d] is missing a nodeId.", index))
		return codec.ConnectionRecord{}, false
	}
	return codec.ConnectionRecord{
		Source:      flow.Address{Node: flow.NodeID(*c.Source.NodeID), Socket: c.Source.Label, Indices: c.Source.Indices},
		Destination: flow.Address{Node: flow.NodeID(*c.Destination.NodeID), Socket: c.Destination.Label, Indices: c.Destination.Indices},
	}, true
}

// array decodes an optional JSON array. A missing member is an empty array.
func array(raw json.RawMessage, name string, diags *hcl.Diagnostics) []json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		*diags = diags.Append(errorf("Invalid document", "%s must be an array.", name))
		return nil
	}
	return out
}

func str(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func errorf(summary, format string, args ...any) *hcl.Diagnostic {
	return &hcl.Diagnostic{Severity: hcl.DiagError, Summary: summary, Detail: fmt.Sprintf(format, args...)}
}

