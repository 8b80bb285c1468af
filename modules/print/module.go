// Package print provides a sink node that writes its input to a stream.
package print

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/kinds"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
// Out defaults to os.Stdout.
type Module struct {
	Out io.Writer
}

const PrintTag = "Print"

// Print writes `label = value` to its stream each time it computes. It has
// no outputs, so it computes only when evaluated as a sink.
type Print struct {
	*flow.Node
	Value *flow.Slot
	out   io.Writer
}

func NewPrint(label string, out io.Writer) *Print {
	if out == nil {
		out = os.Stdout
	}
	p := &Print{out: out}
	p.Node = flow.NewNode(PrintTag, label, p)
	p.Value = p.AddInput("value", kinds.String)
	p.Ready()
	return p
}

func (p *Print) Evaluate() {
	v := flow.ReadAs[string](p.Value)
	slog.Debug("Printing input.", "node", p.Label())
	fmt.Fprintf(p.out, "%s = %q\n", p.Label(), v)
}

// Register registers the node type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(PrintTag, func(label string) *flow.Node { return NewPrint(label, m.Out).Node })
}
