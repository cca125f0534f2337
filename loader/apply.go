package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/typegraph/apply"
)

// Apply trees are written as plain YAML mappings. Leaves may carry a tag:
//
//	a: !inherit            # taken from the caller
//	b: !inherit 3          # inherited, with a static override
//	c: !context user_id
//	d: !secret API_TOKEN
//	e: !parent id
//
// Untagged scalars and sequences are static values; an empty leaf is an
// error.
const (
	tagInherit = "!inherit"
	tagContext = "!context"
	tagSecret  = "!secret"
	tagParent  = "!parent"
)

func (l *loader) applyTree(n *yaml.Node, path []string) (apply.Tree, error) {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: apply must be a mapping", n.Line)
	}
	t := make(apply.Tree, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		p := append(append([]string(nil), path...), k)
		v, err := l.applyValue(n.Content[i+1], p)
		if err != nil {
			return nil, err
		}
		t[k] = v
	}
	return t, nil
}

func (l *loader) applyValue(n *yaml.Node, path []string) (apply.Value, error) {
	n = deref(n)
	switch n.Tag {
	case tagInherit:
		if n.Kind == yaml.ScalarNode && n.Value == "" {
			return apply.Inherit(), nil
		}
		bare := *n
		bare.Tag = ""
		bare.Style &^= yaml.TaggedStyle
		o, err := l.applyValue(&bare, path)
		if err != nil {
			return apply.Value{}, err
		}
		v, err := apply.InheritWith(o)
		if err != nil {
			return apply.Value{}, atLine(n, apply.WithPath(err, path...))
		}
		return v, nil
	case tagContext, tagSecret, tagParent:
		if n.Kind != yaml.ScalarNode || n.Value == "" {
			return apply.Value{}, fmt.Errorf("line %d: %s needs a name", n.Line, n.Tag)
		}
		switch n.Tag {
		case tagContext:
			return apply.Context(n.Value), nil
		case tagSecret:
			return apply.Secret(n.Value), nil
		}
		return apply.Parent(n.Value), nil
	}
	if len(n.Tag) > 1 && n.Tag[0] == '!' && n.Tag[1] != '!' {
		return apply.Value{}, atLine(n, &apply.UnsupportedLeafError{Path: path, Kind: "tag " + n.Tag})
	}

	switch n.Kind {
	case yaml.MappingNode:
		t, err := l.applyTree(n, path)
		if err != nil {
			return apply.Value{}, err
		}
		return apply.Nested(t), nil
	case yaml.SequenceNode:
		if err := rejectMarkers(n, path); err != nil {
			return apply.Value{}, atLine(n, err)
		}
		var items []any
		if err := n.Decode(&items); err != nil {
			return apply.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		v, err := apply.List(items...)
		if err != nil {
			return apply.Value{}, atLine(n, apply.WithPath(err, path...))
		}
		return v, nil
	}

	var raw any
	if err := n.Decode(&raw); err != nil {
		return apply.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
	}
	if raw == nil {
		return apply.Value{}, atLine(n, &apply.IncompleteLeafError{Path: path})
	}
	v, err := apply.Literal(raw)
	if err != nil {
		return apply.Value{}, atLine(n, apply.WithPath(err, path...))
	}
	return v, nil
}

// rejectMarkers fails when a tagged leaf appears anywhere inside a sequence.
// Lists are opaque static values.
func rejectMarkers(n *yaml.Node, path []string) error {
	n = deref(n)
	switch n.Tag {
	case tagInherit, tagContext, tagSecret, tagParent:
		return &apply.UnsupportedLeafError{Path: path, Kind: "apply marker inside list"}
	}
	for i, c := range n.Content {
		p := path
		if n.Kind == yaml.SequenceNode {
			p = append(append([]string(nil), path...), fmt.Sprintf("[%d]", i))
		}
		if err := rejectMarkers(c, p); err != nil {
			return err
		}
	}
	return nil
}

func atLine(n *yaml.Node, err error) error {
	return fmt.Errorf("line %d: %w", n.Line, err)
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
