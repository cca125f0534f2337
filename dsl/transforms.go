package dsl

import (
	"fmt"

	"github.com/reoring/typegraph"
)

// AsOptional wraps the resolved type in Optional.
func AsOptional() typegraph.Transform {
	return typegraph.Transform{
		Name: "optional",
		Fn: func(n typegraph.Node) (typegraph.Node, error) {
			return Optional(n), nil
		},
		Key: func(inner string) string { return optionalKey("", inner, "") },
	}
}

// AsList wraps the resolved type in List.
func AsList() typegraph.Transform {
	return typegraph.Transform{
		Name: "list",
		Fn: func(n typegraph.Node) (typegraph.Node, error) {
			return List(n), nil
		},
		Key: func(inner string) string { return listKey("", inner) },
	}
}

// Renamed re-declares the resolved type under name. The result is
// registered under that name when the proxy is resolved.
func Renamed(name string) typegraph.Transform {
	return typegraph.Transform{
		Name: "rename:" + name,
		Fn: func(n typegraph.Node) (typegraph.Node, error) {
			r, ok := n.(typegraph.Renamer)
			if !ok {
				return nil, fmt.Errorf("dsl: %s cannot be renamed", typegraph.Label(n))
			}
			return r.Rename(name), nil
		},
		// a renamed result is referred to by its new name
		Key: func(string) string { return typegraph.NameKey(name) },
	}
}
