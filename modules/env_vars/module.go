// Package env_vars provides a node that reads the process environment.
package env_vars

import (
	"os"

	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/kinds"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const EnvTag = "Env"

// Env outputs the variable called Name, or Fallback when it is unset.
// The environment is read once per compute; a changed variable is only
// picked up after the node is invalidated.
type Env struct {
	*flow.Node
	Name     *flow.Slot
	Fallback *flow.Slot
	Value    *flow.Slot
	Found    *flow.Slot
}

func NewEnv(label string) *Env {
	e := &Env{}
	e.Node = flow.NewNode(EnvTag, label, e)
	e.Name = e.AddInput("name", kinds.String)
	e.Fallback = e.AddInput("fallback", kinds.String)
	e.Value = e.AddOutput("value", kinds.String)
	e.Found = e.AddOutput("found", kinds.Bool)
	e.Ready()
	return e
}

func (e *Env) Evaluate() {
	v, ok := os.LookupEnv(flow.ReadAs[string](e.Name))
	if !ok {
		v = flow.ReadAs[string](e.Fallback)
	}
	flow.WriteGo(e.Value, v)
	flow.WriteGo(e.Found, ok)
}

// Register registers the node type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(EnvTag, func(label string) *flow.Node { return NewEnv(label).Node })
}
