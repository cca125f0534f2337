// Package dsl provides the builder sugar that produces typegraph nodes.
//
// Overview
//   - Types: String()/Integer()/Float()/Boolean(), Struct().Field(...).Build(),
//     List(item), Optional(item).Default(v), Func(input, output, mat).
//   - Bindings: Runtime(kind, name, config), Materializer(name, rt, data),
//     Policy(name, mat), Secret(name).
//   - Transforms for forward references: AsOptional(), AsList(), Renamed(name),
//     queued with typegraph.Proxy.ThenApply.
//
// Every constructor returns an immutable node whose structural key is
// computed once. Methods such as Default, WithPolicy or Apply return copies.
//
// File layout (roles)
//   - scalar.go: scalar leaf types.
//   - struct.go: struct builder and StructType.
//   - list.go: ListType and OptionalType.
//   - func.go: FuncType with policies and apply trees.
//   - bindings.go: runtimes, materializers, policies and secrets.
//   - transforms.go: proxy transforms.
//
// Example (self-referential type)
//
//	g := typegraph.New("example", typegraph.Options{})
//	deno := d.Runtime("deno", "deno", nil)
//	mat := d.Materializer("list_nodes", deno, map[string]any{"fn": "list"})
//	node := g.Define("Node", d.Struct().
//	    Field("value", d.Integer()).
//	    Field("children", d.List(g.Ref("Node"))).
//	    MustBuild())
//	g.Expose("nodes", d.Func(d.Struct().MustBuild(), d.List(node), mat))
//	doc, err := g.Build()
//
// Example (apply)
//
//	add := d.Func(input, d.Integer(), mat).Apply(apply.Tree{
//	    "a": apply.Inherit(),
//	    "b": apply.Int(2),
//	    "token": apply.Secret("API_TOKEN"),
//	})
package dsl
