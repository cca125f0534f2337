package typegraph

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Walk collects every node reachable from roots into c, depth first and
// pre-order. It stops at the first error.
func Walk(c *Collector, roots ...Node) error {
	rs := make([]Root, len(roots))
	for i, n := range roots {
		rs[i] = Root{Node: n}
	}
	return walkRoots(c, hclog.NewNullLogger(), rs)
}

// walkRoots walks roots in order. Errors under a named root are prefixed
// with the exposed name.
func walkRoots(c *Collector, logger hclog.Logger, roots []Root) error {
	w := &walker{c: c, logger: logger}
	for _, r := range roots {
		if err := w.visit(r.Node); err != nil {
			if r.Name == "" {
				return err
			}
			return fmt.Errorf("expose %q: %w", r.Name, err)
		}
		logger.Trace("walked root", "name", r.Name)
	}
	return nil
}

type walker struct {
	c      *Collector
	logger hclog.Logger
}

// visit collects n before descending, so a node shared by several paths is
// expanded once; later visits stop at the dedup check.
func (w *walker) visit(n Node) error {
	if n == nil {
		return fmt.Errorf("typegraph: nil node in graph")
	}
	target, err := Resolve(n)
	if err != nil {
		return err
	}
	if target.Category() != CategoryNone {
		added, err := w.c.Collect(target)
		if err != nil {
			return err
		}
		if !added {
			return nil
		}
		if w.logger.IsTrace() {
			cat := target.Category()
			w.logger.Trace("collected node", "category", cat.String(), "index", w.c.Len(cat)-1, "node", Label(target))
		}
	}
	for _, e := range target.Edges() {
		if err := w.visit(e); err != nil {
			return err
		}
	}
	return nil
}
