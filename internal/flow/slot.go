package flow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// Slot is a leaf socket: one typed value owned by one node.
type Slot struct {
	label string
	dir   Direction
	kind  Kind
	owner *Node

	value      cty.Value
	upstream   *Slot
	downstream []*Slot
}

func newSlot(label string, dir Direction, kind Kind, owner *Node) *Slot {
	return &Slot{label: label, dir: dir, kind: kind, owner: owner, value: kind.Default}
}

func (s *Slot) Label() string        { return s.label }
func (s *Slot) Direction() Direction { return s.dir }
func (s *Slot) TypeTag() string      { return s.kind.Tag }
func (s *Slot) Kind() Kind           { return s.kind }
func (s *Slot) Owner() *Node         { return s.owner }

// Upstream is the socket this input reads from, or nil.
func (s *Slot) Upstream() *Slot { return s.upstream }

func (s *Slot) Downstream() []*Slot { return slices.Clone(s.downstream) }

// Read returns the effective value. A connected socket reads through its
// upstream. An unconnected output brings its node up to date first.
func (s *Slot) Read() cty.Value {
	if s.upstream != nil {
		return s.upstream.Read()
	}
	if s.dir == Output {
		s.owner.Compute()
	}
	return s.value
}

// Write stores v. An unconnected input invalidates its node. An output
// written by its own node's compute body stores silently. An output written
// from anywhere else invalidates only the output's dependents and leaves
// its node's dirty flag alone, so the override lasts until the node next
// computes. If the node is already dirty, the next read recomputes it and
// the override is lost at once.
func (s *Slot) Write(v cty.Value) {
	if s.dir == Input && s.owner.computing {
		violate("write", s.label, errors.New("input written while its node is computing"))
	}
	val, err := s.kind.Conform(v)
	if err != nil {
		violate("write", s.label, err)
	}
	s.value = val
	switch {
	case s.upstream != nil:
	case s.dir == Input:
		invalidate(pending{socket: s, owner: true})
	case !s.owner.computing:
		invalidate(pending{socket: s})
	}
}

// ConnectFrom makes src the upstream of this input. Reconnecting to the
// current upstream does nothing.
func (s *Slot) ConnectFrom(src *Slot) {
	if err := canConnect(src, s); err != nil {
		violate("connect", s.label, err)
	}
	if s.upstream == src {
		return
	}
	s.unlink()
	s.upstream = src
	src.downstream = append(src.downstream, s)
	invalidate(pending{socket: s, owner: true})
}

// Disconnect drops the upstream link, if any, and invalidates the node.
func (s *Slot) Disconnect() {
	if s.upstream == nil {
		return
	}
	s.unlink()
	invalidate(pending{socket: s, owner: true})
}

func (s *Slot) unlink() {
	up := s.upstream
	if up == nil {
		return
	}
	up.downstream = slices.DeleteFunc(up.downstream, func(d *Slot) bool { return d == s })
	s.upstream = nil
}

func (s *Slot) EncodeValue() cty.Value { return s.value }

func (s *Slot) DecodeValue(v cty.Value) error {
	if v.IsNull() {
		return nil
	}
	val, err := s.kind.Conform(v)
	if err != nil {
		return fmt.Errorf("%s: %w", s.label, err)
	}
	s.Write(val)
	return nil
}

func canConnect(src Socket, dst Socket) error {
	if src == nil || dst == nil {
		return ErrUnknownSocket
	}
	from, ok := src.(*Slot)
	if !ok {
		return fmt.Errorf("%w: source %q", ErrNotLeaf, src.Label())
	}
	to, ok := dst.(*Slot)
	if !ok {
		return fmt.Errorf("%w: destination %q", ErrNotLeaf, dst.Label())
	}
	if to.dir != Input {
		return fmt.Errorf("%w: %q is an output", ErrNotInput, to.label)
	}
	if from == to {
		return ErrSelfConnection
	}
	if from.kind.Tag != to.kind.Tag {
		return fmt.Errorf("%w: %s cannot feed %s", ErrTypeMismatch, from.kind.Tag, to.kind.Tag)
	}
	// Reads follow upstream links, so the chain above from must not reach to.
	for up := from.upstream; up != nil; up = up.upstream {
		if up == to {
			return fmt.Errorf("%w: %q already reads through %q", ErrPassThroughLoop, from.label, to.label)
		}
	}
	return nil
}
