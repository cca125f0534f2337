package loader

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Options controls how a declaration file is loaded.
type Options struct {
	// Logger is handed to the resulting typegraph.Graph. Defaults to a null
	// logger.
	Logger hclog.Logger
	// Name overrides the graph name declared in the file.
	Name string
	// RequireFunctions is passed on to typegraph.Options.
	RequireFunctions bool
}

// Diag carries non-fatal warnings produced while loading.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
