package dsl

import (
	"fmt"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/document"
)

// title returns the explicit name, or "<kind>_<index>" for anonymous types.
func title(ix typegraph.Indexer, n typegraph.Node, kind, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	i, err := ix.IndexOf(n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d", kind, i), nil
}

func canonical(v any) string {
	if v == nil {
		return "null"
	}
	s, err := document.CanonicalJSON(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return s
}

func indexAll(ix typegraph.Indexer, ns []typegraph.Node) ([]int, error) {
	out := make([]int, 0, len(ns))
	for _, n := range ns {
		i, err := ix.IndexOf(n)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}
