package typegraph

import (
	"errors"
	"fmt"

	"github.com/reoring/typegraph/apply"
	"github.com/reoring/typegraph/document"
)

// Root is an exposed binding.
type Root struct {
	Name string
	Node Node
}

// CompileApplies compiles the apply tree of every collected function that
// carries one. The collector must be frozen so the function indices are
// final.
func CompileApplies(c *Collector) ([]document.FunctionApply, error) {
	if !c.Frozen() {
		return nil, errors.New("typegraph: compile applies requires a frozen collector")
	}
	var out []document.FunctionApply
	for i, n := range c.Nodes(CategoryType) {
		inj, ok := n.(Injector)
		if !ok {
			continue
		}
		tree := inj.Injections()
		if len(tree) == 0 {
			continue
		}
		paths, err := apply.Compile(tree)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Label(n), err)
		}
		out = append(out, document.FunctionApply{Function: i, Paths: paths})
	}
	return out, nil
}

// Serialize renders a frozen collector into a document. Every node describes
// itself through c, so all references come out as indices.
func Serialize(name string, c *Collector, roots []Root, applies []document.FunctionApply) (*document.Document, error) {
	if !c.Frozen() {
		return nil, errors.New("typegraph: serialize requires a frozen collector")
	}
	doc := &document.Document{Name: name, Exposed: []document.Exposed{}, Applies: applies}
	for _, cat := range Categories() {
		nodes := c.Nodes(cat)
		entries := make([]document.Entry, 0, len(nodes))
		for i, n := range nodes {
			e, err := n.Data(c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", Label(n), err)
			}
			if e.Name == "" {
				e.Name = fmt.Sprintf("%s_%d", cat, i)
			}
			entries = append(entries, e)
		}
		doc.SetEntries(cat.String(), entries)
	}
	for _, r := range roots {
		target, err := Resolve(r.Node)
		if err != nil {
			return nil, fmt.Errorf("expose %q: %w", r.Name, err)
		}
		if target.Category() != CategoryType {
			return nil, &NotExposableError{Name: r.Name, Reason: "category " + target.Category().String()}
		}
		idx, err := c.IndexOf(target)
		if err != nil {
			return nil, fmt.Errorf("expose %q: %w", r.Name, err)
		}
		doc.Exposed = append(doc.Exposed, document.Exposed{Name: r.Name, TypeIndex: idx})
	}
	return doc, nil
}
