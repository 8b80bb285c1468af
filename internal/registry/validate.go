package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/flow"
)

// Validate performs a parity check between node constructors and the socket
// registry: every node type must build, report its own tag, leave the
// initializing state, and declare only socket types a document can rebuild.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, tag := range r.NodeTags() {
		n, err := probe(r.nodes[tag])
		if err != nil {
			errs = append(errs, fmt.Sprintf("node '%s': constructor failed: %v", tag, err))
			continue
		}
		if n == nil {
			errs = append(errs, fmt.Sprintf("node '%s': constructor returned nil", tag))
			continue
		}
		if n.TypeTag() != tag {
			errs = append(errs, fmt.Sprintf("node '%s': constructed node reports type '%s'", tag, n.TypeTag()))
		}
		if n.Initializing() {
			errs = append(errs, fmt.Sprintf("node '%s': constructor did not call Ready", tag))
		}
		for _, s := range append(n.Inputs(), n.Outputs()...) {
			if _, ok := r.sockets[s.TypeTag()]; !ok {
				errs = append(errs, fmt.Sprintf("node '%s': %s '%s' has type '%s' with no registered socket factory", tag, s.Direction(), s.Label(), s.TypeTag()))
			}
		}
		logger.Debug("Validated node type.", "tag", tag, "inputs", len(n.Inputs()), "outputs", len(n.Outputs()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func probe(ctor NodeConstructor) (n *flow.Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return ctor("probe"), nil
}
