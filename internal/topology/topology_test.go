package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/kinds"
	"github.com/vk/flowgrid/modules/arith"
)

// chain builds a·b → product, then product and a → total, with a
// placeholder and an unconnected adder trailing.
func chain() *flow.Graph {
	g := flow.NewGraph()
	a := arith.NewConst("a")
	b := arith.NewConst("b")
	mul := arith.NewMul("product")
	sum := arith.NewSum("total")
	g.Add(a.Node)
	g.Add(b.Node)
	g.Add(mul.Node)
	g.Add(sum.Node)
	g.Add(nil)
	g.Add(arith.NewAdd("idle").Node)

	mul.LHS.ConnectFrom(a.Value)
	mul.RHS.ConnectFrom(b.Value)
	sum.Terms.AppendSlot().ConnectFrom(mul.Result)
	sum.Terms.AppendSlot().ConnectFrom(a.Value)
	return g
}

func position(order []flow.NodeID, id flow.NodeID) int {
	for i, o := range order {
		if o == id {
			return i
		}
	}
	return -1
}

func TestOrder(t *testing.T) {
	top := Build(chain())

	order, err := top.Order()
	require.NoError(t, err)
	assert.ElementsMatch(t, []flow.NodeID{0, 1, 2, 3, 5}, order, "placeholders are not ordered")

	edges := [][2]flow.NodeID{{0, 2}, {1, 2}, {2, 3}, {0, 3}}
	for _, e := range edges {
		assert.Less(t, position(order, e[0]), position(order, e[1]), "%d must precede %d", e[0], e[1])
	}
	assert.Empty(t, top.Cycles())
}

func TestSinks(t *testing.T) {
	top := Build(chain())

	assert.Equal(t, []flow.NodeID{3, 5}, top.Sinks(), "placeholder 4 is not a sink")
}

func TestCycles(t *testing.T) {
	g := flow.NewGraph()
	first := arith.NewMul("first")
	second := arith.NewMul("second")
	loop := arith.NewAdd("loop")
	tail := arith.NewAdd("tail")
	g.Add(first.Node)
	g.Add(second.Node)
	g.Add(loop.Node)
	g.Add(tail.Node)

	first.LHS.ConnectFrom(second.Result)
	second.LHS.ConnectFrom(first.Result)
	loop.LHS.ConnectFrom(loop.Result)
	tail.LHS.ConnectFrom(first.Result)

	top := Build(g)
	assert.Equal(t, [][]flow.NodeID{{0, 1}, {2}}, top.Cycles())

	order, err := top.Order()
	assert.Nil(t, order)
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, top.Cycles(), cycleErr.Cycles)
	assert.EqualError(t, err, "graph has 2 cycle(s): [0 1], [2]")
}

func TestOnlyTwoNodeCycleIsUnorderable(t *testing.T) {
	g := flow.NewGraph()
	first := arith.NewMul("first")
	second := arith.NewMul("second")
	g.Add(first.Node)
	g.Add(second.Node)
	first.LHS.ConnectFrom(second.Result)
	second.LHS.ConnectFrom(first.Result)

	_, err := Build(g).Order()

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, [][]flow.NodeID{{0, 1}}, cycleErr.Cycles)
}

func TestNestedArrayInputsCountAsEdges(t *testing.T) {
	g := flow.NewGraph()
	src := arith.NewConst("src")
	grid := flow.NewNode("Grid", "grid", nil)
	rows := grid.AddArrayInput("rows", flow.ArrayOf(kinds.F32))
	grid.Ready()
	g.Add(src.Node)
	g.Add(grid)

	row := rows.AppendNew().(*flow.SocketArray)
	row.AppendSlot().ConnectFrom(src.Value)

	top := Build(g)
	assert.Equal(t, []flow.NodeID{1}, top.Sinks())
	order, err := top.Order()
	require.NoError(t, err)
	assert.Equal(t, []flow.NodeID{0, 1}, order)
}
