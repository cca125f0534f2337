package dsl

import (
	"fmt"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/document"
)

// ListType is a homogeneous list of items.
type ListType struct {
	name string
	item typegraph.Node
	key  string
}

// List returns a list of item.
func List(item typegraph.Node) *ListType { return newList("", item) }

func newList(name string, item typegraph.Node) *ListType {
	return &ListType{name: name, item: item, key: listKey(name, typegraph.RefKey(item))}
}

func listKey(name, item string) string { return typegraph.Fingerprint("list", name, item) }

// Item returns the element type.
func (l *ListType) Item() typegraph.Node { return l.item }

func (l *ListType) Rename(name string) typegraph.Node { return newList(name, l.item) }
func (l *ListType) TypeName() string                  { return l.name }
func (l *ListType) Category() typegraph.Category      { return typegraph.CategoryType }
func (l *ListType) Edges() []typegraph.Node           { return []typegraph.Node{l.item} }
func (l *ListType) Key() string                       { return l.key }

func (l *ListType) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, l, "list", l.name)
	if err != nil {
		return document.Entry{}, err
	}
	i, err := ix.IndexOf(l.item)
	if err != nil {
		return document.Entry{}, fmt.Errorf("list item: %w", err)
	}
	return document.Entry{Name: name, Data: map[string]any{"type": "list", "items": i}}, nil
}

// OptionalType marks its item as nullable, optionally with a default.
type OptionalType struct {
	name       string
	item       typegraph.Node
	def        any
	hasDefault bool
	key        string
}

// Optional returns an optional item without default.
func Optional(item typegraph.Node) *OptionalType { return newOptional("", item, nil, false) }

func newOptional(name string, item typegraph.Node, def any, hasDefault bool) *OptionalType {
	d := ""
	if hasDefault {
		d = canonical(def)
	}
	return &OptionalType{name: name, item: item, def: def, hasDefault: hasDefault,
		key: optionalKey(name, typegraph.RefKey(item), d)}
}

func optionalKey(name, item, def string) string {
	return typegraph.Fingerprint("optional", name, item, def)
}

// Default returns a copy with a default value.
func (o *OptionalType) Default(v any) *OptionalType { return newOptional(o.name, o.item, v, true) }

// Item returns the wrapped type.
func (o *OptionalType) Item() typegraph.Node { return o.item }

func (o *OptionalType) Rename(name string) typegraph.Node {
	return newOptional(name, o.item, o.def, o.hasDefault)
}
func (o *OptionalType) TypeName() string             { return o.name }
func (o *OptionalType) Category() typegraph.Category { return typegraph.CategoryType }
func (o *OptionalType) Edges() []typegraph.Node      { return []typegraph.Node{o.item} }
func (o *OptionalType) Key() string                  { return o.key }

func (o *OptionalType) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, o, "optional", o.name)
	if err != nil {
		return document.Entry{}, err
	}
	i, err := ix.IndexOf(o.item)
	if err != nil {
		return document.Entry{}, fmt.Errorf("optional item: %w", err)
	}
	data := map[string]any{"type": "optional", "item": i}
	if o.hasDefault {
		data["default_value"] = o.def
	}
	return document.Entry{Name: name, Data: data}, nil
}
