package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/flowgrid/internal/flow"
)

// Module is the interface that all node and socket catalogs implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// NodeConstructor builds a ready node with its default socket layout.
type NodeConstructor func(label string) *flow.Node

// Registry holds the node constructors and socket shapes for a single
// application instance.
type Registry struct {
	nodes   map[string]NodeConstructor
	sockets map[string]flow.Shape
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		nodes:   make(map[string]NodeConstructor),
		sockets: make(map[string]flow.Shape),
	}
}

// RegisterNode registers the constructor for a node type tag.
func (r *Registry) RegisterNode(tag string, ctor NodeConstructor) {
	if _, exists := r.nodes[tag]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", tag))
	}
	slog.Debug("Registering node type.", "tag", tag)
	r.nodes[tag] = ctor
}

// RegisterSocket registers a socket shape under its own type tag.
func (r *Registry) RegisterSocket(shape flow.Shape) {
	tag := shape.TypeTag()
	if _, exists := r.sockets[tag]; exists {
		panic(fmt.Sprintf("socket type '%s' already registered", tag))
	}
	slog.Debug("Registering socket type.", "tag", tag)
	r.sockets[tag] = shape
}

// Node returns the constructor registered for tag.
func (r *Registry) Node(tag string) (NodeConstructor, bool) {
	ctor, ok := r.nodes[tag]
	return ctor, ok
}

// Socket returns the shape registered for tag.
func (r *Registry) Socket(tag string) (flow.Shape, bool) {
	shape, ok := r.sockets[tag]
	return shape, ok
}

// NodeTags lists registered node type tags in sorted order.
func (r *Registry) NodeTags() []string {
	return sortedKeys(r.nodes)
}

// SocketTags lists registered socket type tags in sorted order.
func (r *Registry) SocketTags() []string {
	return sortedKeys(r.sockets)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Install registers every module in order.
func (r *Registry) Install(modules ...Module) *Registry {
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}
