package typegraph

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/reoring/typegraph/document"
)

// Options configures a Graph.
type Options struct {
	// Logger receives build traces. Defaults to a null logger.
	Logger hclog.Logger
	// RequireFunctions rejects exposed roots that are not function types.
	RequireFunctions bool
}

// Graph is the explicit handle of one typegraph declaration. It owns the name
// registry; every Build gets a fresh Collector. A Graph is not safe for
// concurrent use.
type Graph struct {
	name     string
	opts     Options
	logger   hclog.Logger
	registry *Registry
	roots    []Root
	exposed  map[string]struct{}
	errs     *multierror.Error
}

// New creates an empty graph.
func New(name string, opts Options) *Graph {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Graph{
		name:     name,
		opts:     opts,
		logger:   logger.Named("typegraph"),
		registry: NewRegistry(),
		exposed:  map[string]struct{}{},
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Registry exposes the name table of g.
func (g *Graph) Registry() *Registry { return g.registry }

// Define registers n under name and returns the registered node. Nodes that
// implement Renamer are renamed first so the document carries the name.
// Conflicting definitions are reported by Build.
func (g *Graph) Define(name string, n Node) Node {
	if r, ok := n.(Renamer); ok {
		n = r.Rename(name)
	}
	if err := g.registry.Define(name, n); err != nil {
		g.errs = multierror.Append(g.errs, err)
	}
	return n
}

// Ref returns a forward reference to name.
func (g *Graph) Ref(name string) Proxy { return g.registry.Ref(name) }

// Expose publishes n under name. n must be a type (or a reference to one).
func (g *Graph) Expose(name string, n Node) {
	if _, dup := g.exposed[name]; dup {
		g.errs = multierror.Append(g.errs, &NotExposableError{Name: name, Reason: "already exposed"})
		return
	}
	if n == nil {
		g.errs = multierror.Append(g.errs, &NotExposableError{Name: name, Reason: "nil node"})
		return
	}
	if _, proxy := n.(Resolver); !proxy && n.Category() != CategoryType {
		g.errs = multierror.Append(g.errs, &NotExposableError{Name: name, Reason: "category " + n.Category().String()})
		return
	}
	g.exposed[name] = struct{}{}
	g.roots = append(g.roots, Root{Name: name, Node: n})
}

// Err returns the accumulated declaration errors, or nil.
func (g *Graph) Err() error { return g.errs.ErrorOrNil() }

// Build walks the exposed roots into a fresh collector, freezes it and
// serializes the result. Any error aborts the build; no partial document is
// returned.
func (g *Graph) Build() (*document.Document, error) {
	if err := g.Err(); err != nil {
		return nil, err
	}
	c := NewCollector()
	if err := walkRoots(c, g.logger, g.roots); err != nil {
		return nil, err
	}
	c.Freeze()
	if err := checkTypeNames(c); err != nil {
		return nil, err
	}
	if g.opts.RequireFunctions {
		if err := g.checkFunctionRoots(); err != nil {
			return nil, err
		}
	}

	applies, err := CompileApplies(c)
	if err != nil {
		return nil, err
	}
	doc, err := Serialize(g.name, c, g.roots, applies)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("built typegraph", "name", g.name,
		"types", len(doc.Types), "runtimes", len(doc.Runtimes),
		"materializers", len(doc.Materializers), "policies", len(doc.Policies),
		"secrets", len(doc.Secrets), "exposed", len(doc.Exposed))
	return doc, nil
}

// checkTypeNames rejects two distinct collected types sharing a name. Types
// embed named children by name, so names must identify one declaration.
func checkTypeNames(c *Collector) error {
	var errs *multierror.Error
	seen := map[string]string{}
	for _, n := range c.Nodes(CategoryType) {
		nm, ok := n.(Named)
		if !ok || nm.TypeName() == "" {
			continue
		}
		name := nm.TypeName()
		if k, dup := seen[name]; dup && k != n.Key() {
			errs = multierror.Append(errs, &DuplicateNameError{Name: name})
			continue
		}
		seen[name] = n.Key()
	}
	return errs.ErrorOrNil()
}

func (g *Graph) checkFunctionRoots() error {
	var errs *multierror.Error
	for _, r := range g.roots {
		target, err := Resolve(r.Node)
		if err != nil {
			return fmt.Errorf("expose %q: %w", r.Name, err)
		}
		if _, ok := target.(Injector); !ok {
			errs = multierror.Append(errs, &NotExposableError{Name: r.Name, Reason: "not a function"})
		}
	}
	return errs.ErrorOrNil()
}

// MustBuild is like Build but panics on error.
func (g *Graph) MustBuild() *document.Document {
	doc, err := g.Build()
	if err != nil {
		panic(err)
	}
	return doc
}
