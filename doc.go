// Package typegraph compiles a declaration graph of types, runtimes,
// materializers, policies and secrets into a flat, index-addressed document.
//
//   - Node model: every schema element is a Node with a fixed Category, its
//     dependency edges, a structural Key and a Data description that refers to
//     dependencies by collector index.
//   - Collector: one ordered, deduplicating set per category, scoped to one build.
//   - Walk: pre-order traversal from the exposed roots that feeds the Collector.
//   - Registry/Proxy: named forward references resolved lazily and memoized,
//     which is how self-referential and mutually recursive types are declared.
//   - Serialize: renders a frozen Collector, the exposed roots and the compiled
//     apply paths (see package apply) into a document.Document.
//
// Design policy:
//   - Concrete nodes live in dsl/, apply trees in apply/, the output model in
//     document/, the YAML front end in loader/ and the CLI in cmd/typegraph.
//   - A Graph is an explicit build handle; nothing is kept in package state.
//
// Typical usage:
//
//	g := typegraph.New("example", typegraph.Options{})
//	node := g.Define("Node", d.Struct().
//	    Field("value", d.Integer()).
//	    Field("next", d.Optional(g.Ref("Node"))).
//	    MustBuild())
//	g.Expose("head", d.Func(d.Struct().MustBuild(), node, mat))
//	doc, err := g.Build()
package typegraph
