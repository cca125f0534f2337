package dsl

import (
	"fmt"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/apply"
	"github.com/reoring/typegraph/document"
)

// FuncType binds an input struct and an output type to a materializer.
type FuncType struct {
	name     string
	input    typegraph.Node
	output   typegraph.Node
	mat      typegraph.Node
	policies []typegraph.Node
	tree     apply.Tree
	key      string
}

// Func returns a function type executed by mat.
func Func(input, output, mat typegraph.Node) *FuncType {
	return newFunc("", input, output, mat, nil, nil)
}

func newFunc(name string, input, output, mat typegraph.Node, policies []typegraph.Node, tree apply.Tree) *FuncType {
	parts := []string{name, typegraph.RefKey(input), typegraph.RefKey(output), mat.Key()}
	for _, p := range policies {
		parts = append(parts, p.Key())
	}
	if len(tree) > 0 {
		parts = append(parts, tree.Key())
	}
	return &FuncType{name: name, input: input, output: output, mat: mat, policies: policies, tree: tree,
		key: typegraph.Fingerprint("function", parts...)}
}

// WithPolicy returns a copy guarded by the given policies, appended after any
// existing ones.
func (f *FuncType) WithPolicy(ps ...typegraph.Node) *FuncType {
	next := append(append([]typegraph.Node(nil), f.policies...), ps...)
	return newFunc(f.name, f.input, f.output, f.mat, next, f.tree)
}

// Apply returns a copy whose input fields are injected according to t.
func (f *FuncType) Apply(t apply.Tree) *FuncType {
	return newFunc(f.name, f.input, f.output, f.mat, f.policies, t)
}

// Injections implements typegraph.Injector.
func (f *FuncType) Injections() apply.Tree { return f.tree }

func (f *FuncType) Rename(name string) typegraph.Node {
	return newFunc(name, f.input, f.output, f.mat, f.policies, f.tree)
}
func (f *FuncType) TypeName() string             { return f.name }
func (f *FuncType) Category() typegraph.Category { return typegraph.CategoryType }
func (f *FuncType) Key() string                  { return f.key }

// Edges lists input, output, materializer, policies and the secrets read by
// the apply tree.
func (f *FuncType) Edges() []typegraph.Node {
	out := []typegraph.Node{f.input, f.output, f.mat}
	out = append(out, f.policies...)
	for _, s := range f.tree.Secrets() {
		out = append(out, Secret(s))
	}
	return out
}

func (f *FuncType) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, f, "function", f.name)
	if err != nil {
		return document.Entry{}, err
	}
	in, err := ix.IndexOf(f.input)
	if err != nil {
		return document.Entry{}, fmt.Errorf("function input: %w", err)
	}
	out, err := ix.IndexOf(f.output)
	if err != nil {
		return document.Entry{}, fmt.Errorf("function output: %w", err)
	}
	mat, err := ix.IndexOf(f.mat)
	if err != nil {
		return document.Entry{}, fmt.Errorf("function materializer: %w", err)
	}
	pols, err := indexAll(ix, f.policies)
	if err != nil {
		return document.Entry{}, fmt.Errorf("function policy: %w", err)
	}
	return document.Entry{Name: name, Data: map[string]any{
		"type":         "function",
		"input":        in,
		"output":       out,
		"materializer": mat,
		"policies":     pols,
	}}, nil
}
