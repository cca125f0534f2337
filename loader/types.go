package loader

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/dsl"
)

var builtins = map[string]func() *dsl.Scalar{
	"integer": dsl.Integer,
	"float":   dsl.Float,
	"string":  dsl.String,
	"boolean": dsl.Boolean,
}

// typeExpr decodes a type expression:
//
//	integer | string | float | boolean   builtin scalars
//	User                                 reference to a declared type
//	User?                                optional (a proxy transform for references)
//	{list: <expr>}
//	{optional: <expr>, default: <value>}
//	{struct: {field: <expr>, ...}}
//	{ref: User, transforms: [optional, list, "rename:Other"]}
//	{func: {input: <expr>, output: <expr>, materializer: name, policies: [...], apply: {...}}}
func (l *loader) typeExpr(n *yaml.Node) (typegraph.Node, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		t, err := l.namedType(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return t, nil
	case yaml.MappingNode:
		return l.compositeType(n)
	}
	return nil, fmt.Errorf("line %d: type expression must be a name or a mapping", n.Line)
}

func (l *loader) namedType(name string) (typegraph.Node, error) {
	optional := strings.HasSuffix(name, "?")
	name = strings.TrimSuffix(name, "?")
	if name == "" {
		return nil, errors.New("empty type name")
	}
	if mk, ok := builtins[name]; ok {
		if optional {
			return dsl.Optional(mk()), nil
		}
		return mk(), nil
	}
	ref := l.g.Ref(name)
	if optional {
		return ref.ThenApply(dsl.AsOptional()), nil
	}
	return ref, nil
}

func (l *loader) compositeType(n *yaml.Node) (typegraph.Node, error) {
	fields := map[string]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fields[n.Content[i].Value] = n.Content[i+1]
	}
	switch {
	case fields["struct"] != nil:
		return l.structType(fields["struct"])
	case fields["list"] != nil:
		item, err := l.typeExpr(fields["list"])
		if err != nil {
			return nil, err
		}
		return dsl.List(item), nil
	case fields["optional"] != nil:
		item, err := l.typeExpr(fields["optional"])
		if err != nil {
			return nil, err
		}
		opt := dsl.Optional(item)
		if dn := fields["default"]; dn != nil {
			var v any
			if err := dn.Decode(&v); err != nil {
				return nil, fmt.Errorf("line %d: default: %w", dn.Line, err)
			}
			opt = opt.Default(v)
		}
		return opt, nil
	case fields["ref"] != nil:
		return l.refType(fields["ref"], fields["transforms"])
	case fields["func"] != nil:
		return l.funcType(fields["func"])
	}
	return nil, fmt.Errorf("line %d: unknown type form (want struct, list, optional, ref or func)", n.Line)
}

func (l *loader) structType(n *yaml.Node) (typegraph.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: struct must be a mapping of fields", n.Line)
	}
	b := dsl.Struct()
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		t, err := l.typeExpr(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		b.Field(name, t)
	}
	st, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return st, nil
}

func (l *loader) refType(nameN, transformsN *yaml.Node) (typegraph.Node, error) {
	if nameN.Kind != yaml.ScalarNode || nameN.Value == "" {
		return nil, fmt.Errorf("line %d: ref must be a type name", nameN.Line)
	}
	p := l.g.Ref(nameN.Value)
	if transformsN == nil {
		return p, nil
	}
	var names []string
	if err := transformsN.Decode(&names); err != nil {
		return nil, fmt.Errorf("line %d: transforms: %w", transformsN.Line, err)
	}
	for _, t := range names {
		switch {
		case t == "optional":
			p = p.ThenApply(dsl.AsOptional())
		case t == "list":
			p = p.ThenApply(dsl.AsList())
		case strings.HasPrefix(t, "rename:"):
			p = p.ThenApply(dsl.Renamed(strings.TrimPrefix(t, "rename:")))
		default:
			return nil, fmt.Errorf("line %d: unknown transform %q", transformsN.Line, t)
		}
	}
	return p, nil
}

type funcDecl struct {
	Input        yaml.Node `yaml:"input"`
	Output       yaml.Node `yaml:"output"`
	Materializer string    `yaml:"materializer"`
	Policies     []string  `yaml:"policies"`
	Apply        yaml.Node `yaml:"apply"`
}

func (l *loader) funcType(n *yaml.Node) (typegraph.Node, error) {
	var fd funcDecl
	if err := n.Decode(&fd); err != nil {
		return nil, fmt.Errorf("line %d: func: %w", n.Line, err)
	}
	if fd.Input.Kind == 0 || fd.Output.Kind == 0 {
		return nil, fmt.Errorf("line %d: func needs input and output", n.Line)
	}
	input, err := l.typeExpr(&fd.Input)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	output, err := l.typeExpr(&fd.Output)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	mat, ok := l.mats[fd.Materializer]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown materializer %q", n.Line, fd.Materializer)
	}
	l.used["materializers/"+fd.Materializer] = true
	f := dsl.Func(input, output, mat)
	for _, pn := range fd.Policies {
		p, ok := l.policies[pn]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown policy %q", n.Line, pn)
		}
		l.used["policies/"+pn] = true
		f = f.WithPolicy(p)
	}
	if fd.Apply.Kind != 0 {
		tree, err := l.applyTree(&fd.Apply, nil)
		if err != nil {
			return nil, err
		}
		for _, s := range tree.Secrets() {
			if _, ok := l.secrets[s]; !ok {
				return nil, fmt.Errorf("line %d: apply reads undeclared secret %q", fd.Apply.Line, s)
			}
			l.used["secrets/"+s] = true
		}
		f = f.Apply(tree)
	}
	return f, nil
}
