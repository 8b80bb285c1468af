package app

import (
	"io"
	"log/slog"

	"github.com/vk/flowgrid/internal/kinds"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/modules/arith"
	"github.com/vk/flowgrid/modules/env_vars"
	"github.com/vk/flowgrid/modules/print"
	"github.com/vk/flowgrid/modules/socketio"
	"github.com/vk/flowgrid/modules/text"
)

// coreModules is the set of modules compiled into the flowgrid binary.
func coreModules(out io.Writer, logger *slog.Logger) []registry.Module {
	return []registry.Module{
		kinds.Module{},
		&arith.Module{},
		&text.Module{},
		&env_vars.Module{},
		&print.Module{Out: out},
		&socketio.Module{Logger: logger},
	}
}
