package codec

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Document is the persisted form of a graph.
type Document struct {
	Nodes       []NodeRecord
	Connections []ConnectionRecord
}

// NodeRecord describes one node. Inputs and Outputs are the node's top-level
// sockets in declaration order.
type NodeRecord struct {
	Type    string
	Label   string
	Inputs  []SocketRecord
	Outputs []SocketRecord
	Range   hcl.Range
}

// SocketRecord describes one top-level socket. The value of a socket array
// is a tuple of its children's values. cty.NilVal means no value was
// recorded.
type SocketRecord struct {
	Type  string
	Label string
	Value cty.Value
	Range hcl.Range
}

// ConnectionRecord wires Destination to read from Source. Node fields are
// indices into Document.Nodes.
type ConnectionRecord struct {
	Source      flow.Address
	Destination flow.Address
	Range       hcl.Range
}

// Factories resolves the type tags found in a document.
// *registry.Registry implements it.
type Factories interface {
	Node(tag string) (registry.NodeConstructor, bool)
	Socket(tag string) (flow.Shape, bool)
}
