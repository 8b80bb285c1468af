// Package topology analyses the node-level dependency structure of a
// flow graph: which nodes read from which, where the cycles are, and an
// upstream-first evaluation order.
package topology

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/flowgrid/internal/flow"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Topology is a snapshot of the dependencies between the nodes of a graph.
// An edge u→v exists when any input of v, at any depth, is connected to a
// socket owned by u. Placeholders are not part of it.
type Topology struct {
	g         *simple.DirectedGraph
	selfLoops []flow.NodeID
}

// CycleError is returned by Order when the graph has no topological order.
type CycleError struct {
	Cycles [][]flow.NodeID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf("graph has %d cycle(s): %s", len(e.Cycles), strings.Join(parts, ", "))
}

// Build takes a snapshot of g. Later connections are not reflected.
func Build(g *flow.Graph) *Topology {
	t := &Topology{g: simple.NewDirectedGraph()}

	ids := make(map[*flow.Node]flow.NodeID, g.Len())
	for i, n := range g.Nodes() {
		if n == nil {
			continue
		}
		ids[n] = flow.NodeID(i)
		t.g.AddNode(simple.Node(i))
	}

	for i, n := range g.Nodes() {
		if n == nil {
			continue
		}
		to := flow.NodeID(i)
		for _, in := range n.Inputs() {
			for _, s := range leaves(in) {
				up := s.Upstream()
				if up == nil {
					continue
				}
				from, ok := ids[up.Owner()]
				if !ok {
					continue
				}
				if from == to {
					if !slices.Contains(t.selfLoops, to) {
						t.selfLoops = append(t.selfLoops, to)
					}
					continue
				}
				t.g.SetEdge(t.g.NewEdge(simple.Node(from), simple.Node(to)))
			}
		}
	}
	return t
}

// Cycles lists every strongly connected component with more than one node,
// and every node that reads from itself. Members are sorted, and so is the
// list by first member.
func (t *Topology) Cycles() [][]flow.NodeID {
	var out [][]flow.NodeID
	for _, scc := range topo.TarjanSCC(t.g) {
		if len(scc) > 1 {
			ids := toIDs(scc)
			slices.Sort(ids)
			out = append(out, ids)
		}
	}
	for _, id := range t.selfLoops {
		out = append(out, []flow.NodeID{id})
	}
	slices.SortFunc(out, func(a, b []flow.NodeID) int { return cmp.Compare(a[0], b[0]) })
	return out
}

// Order returns the nodes upstream first. Ties are broken by ID so the
// order is stable. A cyclic graph yields a *CycleError.
func (t *Topology) Order() ([]flow.NodeID, error) {
	if len(t.selfLoops) > 0 {
		return nil, &CycleError{Cycles: t.Cycles()}
	}
	sorted, err := topo.SortStabilized(t.g, byID)
	if err != nil {
		return nil, &CycleError{Cycles: t.Cycles()}
	}
	return toIDs(sorted), nil
}

// Sinks returns the nodes nothing else reads from, sorted by ID.
func (t *Topology) Sinks() []flow.NodeID {
	var out []flow.NodeID
	nodes := t.g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if t.g.From(id).Len() == 0 {
			out = append(out, flow.NodeID(id))
		}
	}
	slices.Sort(out)
	return out
}

func byID(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
}

func toIDs(nodes []graph.Node) []flow.NodeID {
	out := make([]flow.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = flow.NodeID(n.ID())
	}
	return out
}

// leaves flattens nested socket arrays into their slots.
func leaves(s flow.Socket) []*flow.Slot {
	switch s := s.(type) {
	case *flow.Slot:
		return []*flow.Slot{s}
	case *flow.SocketArray:
		var out []*flow.Slot
		for _, e := range s.Elements() {
			out = append(out, leaves(e)...)
		}
		return out
	}
	return nil
}
