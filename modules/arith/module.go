// Package arith provides numeric nodes.
package arith

import (
	"fmt"

	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/kinds"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(ConstF32Tag, func(label string) *flow.Node { return NewConst(label).Node })
	r.RegisterNode(MulF32Tag, func(label string) *flow.Node { return NewMul(label).Node })
	r.RegisterNode(AddF32Tag, func(label string) *flow.Node { return NewAdd(label).Node })
	r.RegisterNode(SumF32Tag, func(label string) *flow.Node { return NewSum(label).Node })
	r.RegisterNode(WeightedSumF32Tag, func(label string) *flow.Node { return NewWeightedSum(label).Node })
	r.RegisterNode(ComposeVec4Tag, func(label string) *flow.Node { return NewComposeVec4(label).Node })
}

const (
	ConstF32Tag       = "ConstF32"
	MulF32Tag         = "MulF32"
	AddF32Tag         = "AddF32"
	SumF32Tag         = "SumF32"
	WeightedSumF32Tag = "WeightedSumF32"
	ComposeVec4Tag    = "ComposeVec4"
)

// Const holds a number. Other nodes read it by connecting to Value.
type Const struct {
	*flow.Node
	Value *flow.Slot
}

func NewConst(label string) *Const {
	c := &Const{}
	c.Node = flow.NewNode(ConstF32Tag, label, nil)
	c.Value = c.AddInput("value", kinds.F32)
	c.Ready()
	return c
}

// Binary applies op to lhs and rhs.
type Binary struct {
	*flow.Node
	LHS    *flow.Slot
	RHS    *flow.Slot
	Result *flow.Slot
	op     func(a, b float64) float64
}

func newBinary(tag, label string, op func(a, b float64) float64) *Binary {
	b := &Binary{op: op}
	b.Node = flow.NewNode(tag, label, b)
	b.LHS = b.AddInput("lhs", kinds.F32)
	b.RHS = b.AddInput("rhs", kinds.F32)
	b.Result = b.AddOutput("result", kinds.F32)
	b.Ready()
	return b
}

func NewMul(label string) *Binary {
	return newBinary(MulF32Tag, label, func(a, b float64) float64 { return a * b })
}

func NewAdd(label string) *Binary {
	return newBinary(AddF32Tag, label, func(a, b float64) float64 { return a + b })
}

func (b *Binary) Evaluate() {
	flow.WriteGo(b.Result, b.op(flow.ReadAs[float64](b.LHS), flow.ReadAs[float64](b.RHS)))
}

// Sum adds every element of Terms.
type Sum struct {
	*flow.Node
	Terms  *flow.SocketArray
	Result *flow.Slot
}

func NewSum(label string) *Sum {
	s := &Sum{}
	s.Node = flow.NewNode(SumF32Tag, label, s)
	s.Terms = s.AddArrayInput("terms", kinds.F32)
	s.Result = s.AddOutput("result", kinds.F32)
	s.Ready()
	return s
}

func (s *Sum) Evaluate() {
	total := 0.0
	for _, t := range s.Terms.Slots() {
		total += flow.ReadAs[float64](t)
	}
	flow.WriteGo(s.Result, total)
}

// WeightedSum declares a value and a weight input per unit of Count and
// outputs the sum of their products. Inputs are only ever added; lowering
// Count leaves the extra pairs in place and out of the sum.
type WeightedSum struct {
	*flow.Node
	Count  *flow.Slot
	Result *flow.Slot
}

func NewWeightedSum(label string) *WeightedSum {
	w := &WeightedSum{}
	w.Node = flow.NewNode(WeightedSumF32Tag, label, w)
	w.Count = w.AddInput("count", kinds.U16)
	w.Result = w.AddOutput("result", kinds.F32)
	w.Ready()
	return w
}

func valueLabel(i int) string  { return fmt.Sprintf("value%d", i) }
func weightLabel(i int) string { return fmt.Sprintf("weight%d", i) }

func (w *WeightedSum) Reshape(inputs, _ []flow.Socket, changed flow.Socket) []flow.Declaration {
	if changed.Label() != "count" {
		return nil
	}
	have := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		have[in.Label()] = true
	}
	var decls []flow.Declaration
	for i := range w.storedCount() {
		for _, label := range []string{valueLabel(i), weightLabel(i)} {
			if !have[label] {
				decls = append(decls, flow.Declaration{Direction: flow.Input, Label: label, Shape: kinds.F32})
			}
		}
	}
	return decls
}

func (w *WeightedSum) Evaluate() {
	total := 0.0
	for i := range flow.ReadAs[int](w.Count) {
		v, k := w.pairSlot(valueLabel(i)), w.pairSlot(weightLabel(i))
		if v == nil || k == nil {
			continue
		}
		total += flow.ReadAs[float64](v) * flow.ReadAs[float64](k)
	}
	flow.WriteGo(w.Result, total)
}

// storedCount reads count without computing anything. Reshape runs during
// invalidation, when an upstream output may still be dirty, so it takes
// whatever value the end of the read chain holds.
func (w *WeightedSum) storedCount() int {
	root := w.Count
	for root.Upstream() != nil {
		root = root.Upstream()
	}
	var n int
	if err := gocty.FromCtyValue(root.EncodeValue(), &n); err != nil {
		return 0
	}
	return n
}

// pairSlot returns the input labelled label, declaring it when a count
// pulled from upstream outgrew what Reshape saw.
func (w *WeightedSum) pairSlot(label string) *flow.Slot {
	switch s := w.Input(label).(type) {
	case nil:
		return w.AddInput(label, kinds.F32)
	case *flow.Slot:
		return s
	default:
		return nil
	}
}

// ComposeVec4 packs four numbers into a Vec4.
type ComposeVec4 struct {
	*flow.Node
	X, Y, Z, W *flow.Slot
	Result     *flow.Slot
}

func NewComposeVec4(label string) *ComposeVec4 {
	c := &ComposeVec4{}
	c.Node = flow.NewNode(ComposeVec4Tag, label, c)
	c.X = c.AddInput("x", kinds.F32)
	c.Y = c.AddInput("y", kinds.F32)
	c.Z = c.AddInput("z", kinds.F32)
	c.W = c.AddInput("w", kinds.F32)
	c.Result = c.AddOutput("result", kinds.Vec4)
	c.Ready()
	return c
}

func (c *ComposeVec4) Evaluate() {
	flow.WriteGo(c.Result, []float64{
		flow.ReadAs[float64](c.X),
		flow.ReadAs[float64](c.Y),
		flow.ReadAs[float64](c.Z),
		flow.ReadAs[float64](c.W),
	})
}
