package flow

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// SocketArray is an ordered, append-only group of sockets built from one
// element shape. It is itself a socket; children are labelled parent[i].
type SocketArray struct {
	label string
	dir   Direction
	elem  Shape
	owner *Node
	elems []Socket
}

func (a *SocketArray) Label() string        { return a.label }
func (a *SocketArray) Direction() Direction { return a.dir }
func (a *SocketArray) TypeTag() string      { return ArrayOf(a.elem).TypeTag() }
func (a *SocketArray) Owner() *Node         { return a.owner }

// Elem is the shape every child is built from.
func (a *SocketArray) Elem() Shape { return a.elem }

func (a *SocketArray) Len() int { return len(a.elems) }

// At returns the i-th child. It panics when i is out of range.
func (a *SocketArray) At(i int) Socket { return a.elems[i] }

func (a *SocketArray) Elements() []Socket {
	out := make([]Socket, len(a.elems))
	copy(out, a.elems)
	return out
}

// Slots returns the leaf children. Nested arrays are left out.
func (a *SocketArray) Slots() []*Slot {
	out := make([]*Slot, 0, len(a.elems))
	for _, e := range a.elems {
		if s, ok := e.(*Slot); ok {
			out = append(out, s)
		}
	}
	return out
}

// AppendNew builds the next child and appends it. Past initialisation the
// owner is marked dirty.
func (a *SocketArray) AppendNew() Socket {
	child := a.elem.build(fmt.Sprintf("%s[%d]", a.label, len(a.elems)), a.dir, a.owner)
	a.elems = append(a.elems, child)
	invalidate(pending{socket: child, owner: true})
	return child
}

// AppendSlot is AppendNew for arrays of leaf sockets.
func (a *SocketArray) AppendSlot() *Slot {
	if _, ok := a.elem.(Kind); !ok {
		violate("append", a.label, fmt.Errorf("elements are %s, not leaf sockets", a.elem.TypeTag()))
	}
	return a.AppendNew().(*Slot)
}

func (a *SocketArray) Downstream() []*Slot {
	var out []*Slot
	for _, e := range a.elems {
		out = append(out, e.Downstream()...)
	}
	return out
}

func (a *SocketArray) EncodeValue() cty.Value {
	if len(a.elems) == 0 {
		return cty.EmptyTupleVal
	}
	vals := make([]cty.Value, len(a.elems))
	for i, e := range a.elems {
		vals[i] = e.EncodeValue()
	}
	return cty.TupleVal(vals)
}

// DecodeValue appends one child per element of v and decodes into it. Every
// element is appended even when earlier ones fail.
func (a *SocketArray) DecodeValue(v cty.Value) error {
	if v.IsNull() {
		return nil
	}
	ty := v.Type()
	if !v.IsWhollyKnown() || !(ty.IsTupleType() || ty.IsListType() || ty.IsSetType()) {
		return fmt.Errorf("%s: %w, got %s", a.label, errNotList, ty.FriendlyName())
	}
	var errs []error
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		child := a.AppendNew()
		if err := child.DecodeValue(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
