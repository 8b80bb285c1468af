package flow

import "fmt"

// NodeID is a node's position in a Graph.
type NodeID int

// Graph is an arena of nodes addressed by NodeID. An entry may be nil when a
// node could not be constructed; the slot keeps later IDs stable.
type Graph struct {
	nodes    []*Node
	observer Observer
}

func NewGraph() *Graph {
	return &Graph{}
}

// SetObserver attaches o to every node now in the graph and every node
// added later.
func (g *Graph) SetObserver(o Observer) {
	g.observer = o
	for _, n := range g.nodes {
		if n != nil {
			n.SetObserver(o)
		}
	}
}

// Add appends n, which may be nil, and returns its ID.
func (g *Graph) Add(n *Node) NodeID {
	if n != nil && g.observer != nil {
		n.SetObserver(g.observer)
	}
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns every entry, placeholders included.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Resolve finds the socket named by a.
func (g *Graph) Resolve(a Address) (Socket, error) {
	if a.Node < 0 || int(a.Node) >= len(g.nodes) {
		return nil, fmt.Errorf("%w: %d, graph has %d nodes", ErrNodeOutOfRange, a.Node, len(g.nodes))
	}
	n := g.nodes[a.Node]
	if n == nil {
		return nil, fmt.Errorf("%w: node %d", ErrPlaceholder, a.Node)
	}
	return n.Resolve(a.Socket, a.Indices)
}

// Connect wires dst to read from src. Unlike Slot.ConnectFrom it reports
// unusable endpoints as errors.
func (g *Graph) Connect(src, dst Address) error {
	from, err := g.Resolve(src)
	if err != nil {
		return fmt.Errorf("source %s: %w", src, err)
	}
	to, err := g.Resolve(dst)
	if err != nil {
		return fmt.Errorf("destination %s: %w", dst, err)
	}
	if err := canConnect(from, to); err != nil {
		return fmt.Errorf("connect %s to %s: %w", src, dst, err)
	}
	to.(*Slot).ConnectFrom(from.(*Slot))
	return nil
}

// Compute brings every node up to date, in ID order.
func (g *Graph) Compute() {
	for _, n := range g.nodes {
		if n != nil {
			n.Compute()
		}
	}
}
