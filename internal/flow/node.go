package flow

import (
	"errors"
	"fmt"
)

// Evaluator is the body of a node: it reads inputs and writes outputs.
type Evaluator interface {
	Evaluate()
}

// Reshaper is implemented by node bodies whose socket layout depends on
// their inputs. Reshape runs every time a socket of the node is marked
// changed, before the node's dirty flag is set, and returns the sockets to
// append. It must not mutate the node itself.
type Reshaper interface {
	Reshape(inputs, outputs []Socket, changed Socket) []Declaration
}

// Observer is notified of node state transitions.
type Observer interface {
	NodeComputed(n *Node)
	NodeInvalidated(n *Node)
}

// Declaration names a socket to add to a node.
type Declaration struct {
	Direction Direction
	Label     string
	Shape     Shape
}

// Node owns ordered input and output sockets and the state that decides
// when its body runs.
type Node struct {
	typeTag string
	label   string
	body    Evaluator

	inputs  []Socket
	outputs []Socket

	dirty        bool
	computing    bool
	initializing bool

	observer Observer
}

// NewNode returns a node in the initializing state. Sockets declared before
// Ready do not trigger invalidation. A nil body computes nothing, which
// suits nodes whose outputs are written from outside.
func NewNode(typeTag, label string, body Evaluator) *Node {
	return &Node{
		typeTag:      typeTag,
		label:        label,
		body:         body,
		dirty:        true,
		initializing: true,
	}
}

func (n *Node) TypeTag() string { return n.typeTag }
func (n *Node) Label() string   { return n.label }

func (n *Node) Dirty() bool        { return n.dirty }
func (n *Node) Computing() bool    { return n.computing }
func (n *Node) Initializing() bool { return n.initializing }

// SetObserver replaces the node's observer. Nil disables notifications.
func (n *Node) SetObserver(o Observer) { n.observer = o }

// Ready ends initialisation. The node stays dirty until first computed.
func (n *Node) Ready() { n.initializing = false }

// Compute runs the body if the node is dirty. Dirty is cleared before the
// body runs, so reads that cycle back into this node see stored values.
func (n *Node) Compute() {
	if n.initializing {
		violate("compute", n.label, errors.New("node is still initializing"))
	}
	if !n.dirty || n.computing {
		return
	}
	n.dirty = false
	n.computing = true
	func() {
		defer func() { n.computing = false }()
		if n.body != nil {
			n.body.Evaluate()
		}
	}()
	if n.observer != nil {
		n.observer.NodeComputed(n)
	}
}

func (n *Node) Inputs() []Socket  { return cloneSockets(n.inputs) }
func (n *Node) Outputs() []Socket { return cloneSockets(n.outputs) }

// Input returns the input labelled label, or nil.
func (n *Node) Input(label string) Socket { return lookup(n.inputs, label) }

// Output returns the output labelled label, or nil.
func (n *Node) Output(label string) Socket { return lookup(n.outputs, label) }

// Find searches inputs, then outputs.
func (n *Node) Find(label string) Socket {
	if s := n.Input(label); s != nil {
		return s
	}
	return n.Output(label)
}

// Resolve finds a socket by top-level label and walks indices into
// nested socket arrays.
func (n *Node) Resolve(label string, indices []int) (Socket, error) {
	s := n.Find(label)
	if s == nil {
		return nil, fmt.Errorf("%w: %q on node %q", ErrUnknownSocket, label, n.label)
	}
	for depth, i := range indices {
		arr, ok := s.(*SocketArray)
		if !ok {
			return nil, fmt.Errorf("%w: %q indexed at depth %d", ErrNotArray, s.Label(), depth)
		}
		if i < 0 || i >= arr.Len() {
			return nil, fmt.Errorf("%w: %q has %d elements, got index %d", ErrIndexOutOfRange, arr.Label(), arr.Len(), i)
		}
		s = arr.At(i)
	}
	return s, nil
}

// Declare adds a socket. Past initialisation the node is marked dirty and
// its dependents are invalidated.
func (n *Node) Declare(d Declaration) Socket {
	s := n.declare(d)
	invalidate(pending{socket: s, owner: true})
	return s
}

func (n *Node) AddInput(label string, kind Kind) *Slot {
	return n.Declare(Declaration{Direction: Input, Label: label, Shape: kind}).(*Slot)
}

func (n *Node) AddOutput(label string, kind Kind) *Slot {
	return n.Declare(Declaration{Direction: Output, Label: label, Shape: kind}).(*Slot)
}

func (n *Node) AddArrayInput(label string, elem Shape) *SocketArray {
	return n.Declare(Declaration{Direction: Input, Label: label, Shape: ArrayOf(elem)}).(*SocketArray)
}

func (n *Node) AddArrayOutput(label string, elem Shape) *SocketArray {
	return n.Declare(Declaration{Direction: Output, Label: label, Shape: ArrayOf(elem)}).(*SocketArray)
}

func (n *Node) declare(d Declaration) Socket {
	if d.Shape == nil {
		violate("declare", d.Label, errors.New("declaration has no shape"))
	}
	list := &n.inputs
	if d.Direction == Output {
		list = &n.outputs
	}
	if lookup(*list, d.Label) != nil {
		violate("declare", d.Label, fmt.Errorf("%s label already declared on node %q", d.Direction, n.label))
	}
	s := d.Shape.build(d.Label, d.Direction, n)
	*list = append(*list, s)
	return s
}

// markDirty runs the reshape hook, then sets the dirty flag. It returns
// the sockets fed by this node's outputs when the flag was newly set.
func (n *Node) markDirty(changed Socket) []*Slot {
	if r, ok := n.body.(Reshaper); ok {
		for _, d := range r.Reshape(n.Inputs(), n.Outputs(), changed) {
			n.declare(d)
		}
	}
	if n.dirty {
		return nil
	}
	n.dirty = true
	if n.observer != nil {
		n.observer.NodeInvalidated(n)
	}
	var fed []*Slot
	for _, out := range n.outputs {
		fed = append(fed, out.Downstream()...)
	}
	return fed
}

func lookup(list []Socket, label string) Socket {
	for _, s := range list {
		if s.Label() == label {
			return s
		}
	}
	return nil
}

func cloneSockets(list []Socket) []Socket {
	out := make([]Socket, len(list))
	copy(out, list)
	return out
}
