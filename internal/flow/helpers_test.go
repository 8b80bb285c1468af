package flow

import (
	"github.com/zclconf/go-cty/cty"
)

var number = Kind{Tag: "F32", Type: cty.Number, Default: cty.Zero}

var text = Kind{Tag: "String", Type: cty.String, Default: cty.StringVal("")}

// counter records observer callbacks per node.
type counter struct {
	computed    map[*Node]int
	invalidated map[*Node]int
}

func newCounter() *counter {
	return &counter{computed: map[*Node]int{}, invalidated: map[*Node]int{}}
}

func (c *counter) NodeComputed(n *Node)    { c.computed[n]++ }
func (c *counter) NodeInvalidated(n *Node) { c.invalidated[n]++ }

// constant has one output written from outside.
type constant struct {
	*Node
	Value *Slot
}

func newConstant(label string, v float64) *constant {
	c := &constant{}
	c.Node = NewNode("Const", label, nil)
	c.Value = c.AddOutput("value", number.WithDefault(cty.NumberFloatVal(v)))
	c.Ready()
	return c
}

type binary struct {
	*Node
	LHS, RHS, Result *Slot
	op               func(a, b float64) float64
}

func newBinary(tag, label string, op func(a, b float64) float64) *binary {
	b := &binary{op: op}
	b.Node = NewNode(tag, label, b)
	b.LHS = b.AddInput("lhs", number)
	b.RHS = b.AddInput("rhs", number)
	b.Result = b.AddOutput("result", number)
	b.Ready()
	return b
}

func (b *binary) Evaluate() {
	WriteGo(b.Result, b.op(ReadAs[float64](b.LHS), ReadAs[float64](b.RHS)))
}

func newMul(label string) *binary {
	return newBinary("Mul", label, func(a, b float64) float64 { return a * b })
}

func newAdd(label string) *binary {
	return newBinary("Add", label, func(a, b float64) float64 { return a + b })
}

// relay copies its input to its output.
type relay struct {
	*Node
	In, Out *Slot
}

func newRelay(label string) *relay {
	r := &relay{}
	r.Node = NewNode("Relay", label, r)
	r.In = r.AddInput("in", number)
	r.Out = r.AddOutput("out", number)
	r.Ready()
	return r
}

func (r *relay) Evaluate() { r.Out.Write(r.In.Read()) }

func float(s *Slot) float64 { return ReadAs[float64](s) }
