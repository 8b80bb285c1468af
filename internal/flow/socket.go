package flow

import "github.com/zclconf/go-cty/cty"

// Direction of a socket relative to its node. It never changes.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Socket is the introspection contract shared by leaf sockets (*Slot) and
// socket arrays (*SocketArray). The persistence codec works only through it.
type Socket interface {
	Label() string
	Direction() Direction
	TypeTag() string
	Owner() *Node
	// Downstream lists the sockets that name this socket, or one of its
	// children, as their upstream.
	Downstream() []*Slot
	// EncodeValue returns the stored value without computing anything.
	EncodeValue() cty.Value
	// DecodeValue stores a persisted value. Null means "no value recorded"
	// and is ignored.
	DecodeValue(v cty.Value) error
}
