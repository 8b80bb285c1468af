package flow

import (
	"errors"
	"fmt"
)

// Lookup and wiring failures returned by Graph.Resolve and Graph.Connect.
var (
	ErrNodeOutOfRange  = errors.New("node index out of range")
	ErrPlaceholder     = errors.New("node could not be constructed")
	ErrUnknownSocket   = errors.New("unknown socket label")
	ErrNotArray        = errors.New("socket is not an array")
	ErrIndexOutOfRange = errors.New("socket array index out of range")
	ErrNotLeaf         = errors.New("socket array cannot be connected directly")
	ErrNotInput        = errors.New("connection destination must be an input")
	ErrTypeMismatch    = errors.New("socket types do not match")
	ErrSelfConnection  = errors.New("socket cannot read from itself")
	ErrPassThroughLoop = errors.New("pass-through inputs would read from each other in a loop")
)

// ContractViolation is the panic value raised when a caller breaks the
// socket or node contract. It is a programming error and is never recovered
// inside this package.
type ContractViolation struct {
	Op     string
	Socket string
	Err    error
}

func (e *ContractViolation) Error() string {
	if e.Socket == "" {
		return fmt.Sprintf("flow: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("flow: %s %q: %v", e.Op, e.Socket, e.Err)
}

func (e *ContractViolation) Unwrap() error { return e.Err }

func violate(op, socket string, err error) {
	panic(&ContractViolation{Op: op, Socket: socket, Err: err})
}
