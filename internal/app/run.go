package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/flowgrid/internal/codec"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/hcldoc"
	"github.com/vk/flowgrid/internal/jsondoc"
	"github.com/vk/flowgrid/internal/topology"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Run executes the document once, or keeps executing it on every change
// when watching, until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	_, err := a.pass(ctx)
	if !a.config.Watch {
		a.logger.Debug("App.Run method finished.")
		return err
	}
	if err != nil {
		a.logger.Error("Document pass failed.", "error", err)
	}
	return a.watch(ctx)
}

// pass takes the document through one full cycle.
func (a *App) pass(ctx context.Context) (*flow.Graph, error) {
	g, diags, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	if a.config.Strict && diags.HasErrors() {
		return nil, fmt.Errorf("document has %d error diagnostic(s)", len(diags.Errs()))
	}

	g.SetObserver(a.metrics)
	order := a.analyse(ctx, g)

	if a.config.Evaluate {
		a.evaluate(ctx, g, order)
		a.report(g)
	}
	if a.config.Output != "" {
		if err := a.save(ctx, g); err != nil {
			return g, err
		}
	}

	a.logger.Info("Document pass complete.", "nodes", g.Len(), "diagnostics", len(diags))
	return g, nil
}

// analyse warns about cycles and returns the evaluation order: upstream
// first when the graph is acyclic, document order otherwise.
func (a *App) analyse(ctx context.Context, g *flow.Graph) []flow.NodeID {
	logger := ctxlog.FromContext(ctx)
	top := topology.Build(g)

	for _, c := range top.Cycles() {
		logger.Warn("Graph contains a cycle.", "nodes", c)
	}

	order, err := top.Order()
	if err != nil {
		logger.Warn("Falling back to document order.", "error", err)
		order = nil
		for i, n := range g.Nodes() {
			if n != nil {
				order = append(order, flow.NodeID(i))
			}
		}
	}
	logger.Debug("Evaluation order determined.", "order", order, "sinks", top.Sinks())
	return order
}

func (a *App) evaluate(ctx context.Context, g *flow.Graph, order []flow.NodeID) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Evaluating graph...", "nodes", len(order))

	start := time.Now()
	for _, id := range order {
		g.Node(id).Compute()
	}
	elapsed := time.Since(start)
	a.metrics.Evaluated(elapsed)

	logger.Info("🏁 Evaluation finished.", "duration", elapsed)
}

// report prints every top-level output as `id label.socket = json`.
func (a *App) report(g *flow.Graph) {
	for i, n := range g.Nodes() {
		if n == nil {
			continue
		}
		name := n.Label()
		if name == "" {
			name = n.TypeTag()
		}
		for _, out := range n.Outputs() {
			fmt.Fprintf(a.outW, "%d %s.%s = %s\n", i, name, out.Label(), a.renderValue(out))
		}
	}
}

func (a *App) renderValue(s flow.Socket) string {
	v := s.EncodeValue()
	if v.IsNull() {
		return "null"
	}
	b, err := ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
	if err != nil {
		a.logger.Warn("Failed to render value.", "socket", s.Label(), "error", err)
		return "?"
	}
	return string(b)
}

// save writes the graph, values included, to the configured output.
func (a *App) save(ctx context.Context, g *flow.Graph) error {
	logger := ctxlog.FromContext(ctx)
	path := a.config.Output
	format, err := formatFor(path, a.config.OutputFormat)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	doc := codec.Serialize(g.Nodes())
	if format == "hcl" {
		err = hcldoc.Encode(f, doc)
	} else {
		err = jsondoc.Encode(f, doc)
	}
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	logger.Info("Graph document written.", "path", path, "format", format, "nodes", len(doc.Nodes))
	return f.Close()
}
