// Package text provides string nodes.
package text

import (
	"strconv"
	"strings"

	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/kinds"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const (
	ConcatTag    = "Concat"
	FormatF32Tag = "FormatF32"
)

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(ConcatTag, func(label string) *flow.Node { return NewConcat(label).Node })
	r.RegisterNode(FormatF32Tag, func(label string) *flow.Node { return NewFormat(label).Node })
}

// Concat joins Parts with Separator.
type Concat struct {
	*flow.Node
	Parts     *flow.SocketArray
	Separator *flow.Slot
	Result    *flow.Slot
}

func NewConcat(label string) *Concat {
	c := &Concat{}
	c.Node = flow.NewNode(ConcatTag, label, c)
	c.Parts = c.AddArrayInput("parts", kinds.String)
	c.Separator = c.AddInput("separator", kinds.String)
	c.Result = c.AddOutput("result", kinds.String)
	c.Ready()
	return c
}

func (c *Concat) Evaluate() {
	parts := c.Parts.Slots()
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = flow.ReadAs[string](p)
	}
	flow.WriteGo(c.Result, strings.Join(out, flow.ReadAs[string](c.Separator)))
}

// Format renders a number with a fixed count of decimals.
type Format struct {
	*flow.Node
	Value     *flow.Slot
	Precision *flow.Slot
	Result    *flow.Slot
}

func NewFormat(label string) *Format {
	f := &Format{}
	f.Node = flow.NewNode(FormatF32Tag, label, f)
	f.Value = f.AddInput("value", kinds.F32)
	f.Precision = f.AddInput("precision", kinds.U16)
	f.Result = f.AddOutput("result", kinds.String)
	f.Ready()
	return f
}

func (f *Format) Evaluate() {
	v := flow.ReadAs[float64](f.Value)
	flow.WriteGo(f.Result, strconv.FormatFloat(v, 'f', flow.ReadAs[int](f.Precision), 64))
}
