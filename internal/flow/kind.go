package flow

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Shape builds sockets. It is either a Kind (leaf sockets) or the result of
// ArrayOf.
type Shape interface {
	// TypeTag is the persisted type vocabulary entry for sockets of this shape.
	TypeTag() string
	build(label string, dir Direction, owner *Node) Socket
}

// Kind describes the values a leaf socket holds.
type Kind struct {
	Tag     string
	Type    cty.Type
	Default cty.Value
	// Check rejects values the cty type alone cannot rule out.
	Check func(cty.Value) error
}

func (k Kind) TypeTag() string { return k.Tag }

func (k Kind) build(label string, dir Direction, owner *Node) Socket {
	return newSlot(label, dir, k, owner)
}

// WithDefault returns a copy of k whose sockets start out holding v.
func (k Kind) WithDefault(v cty.Value) Kind {
	c, err := k.Conform(v)
	if err != nil {
		violate("default", k.Tag, err)
	}
	k.Default = c
	return k
}

// Conform converts v to the kind's type and applies its check.
func (k Kind) Conform(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("%s value must not be null", k.Tag)
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("%s value must be known", k.Tag)
	}
	out, err := convert.Convert(v, k.Type)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s value: %w", k.Tag, err)
	}
	if k.Check != nil {
		if err := k.Check(out); err != nil {
			return cty.NilVal, fmt.Errorf("%s value: %w", k.Tag, err)
		}
	}
	return out, nil
}

type arrayShape struct {
	elem Shape
}

// ArrayOf is the shape of a socket array whose children are built from elem.
func ArrayOf(elem Shape) Shape {
	return arrayShape{elem: elem}
}

func (a arrayShape) TypeTag() string {
	return "SocketArray<" + a.elem.TypeTag() + ">"
}

func (a arrayShape) build(label string, dir Direction, owner *Node) Socket {
	return &SocketArray{label: label, dir: dir, elem: a.elem, owner: owner}
}

var errNotList = errors.New("expected a list of values")
