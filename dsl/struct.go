package dsl

import (
	"errors"
	"fmt"
	"sort"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/document"
)

// StructType maps field names to types. Field order does not matter: two
// structs with the same name and field-name -> type mapping are equal.
type StructType struct {
	name   string
	fields map[string]typegraph.Node
	order  []string
	key    string
}

type structBuilder struct {
	name   string
	fields map[string]typegraph.Node
	errs   []error
}

// Struct creates a new struct builder.
func Struct() *structBuilder {
	return &structBuilder{fields: map[string]typegraph.Node{}}
}

// Field registers a field. Redeclaring a field replaces it.
func (b *structBuilder) Field(name string, t typegraph.Node) *structBuilder {
	switch {
	case name == "":
		b.errs = append(b.errs, errors.New("dsl: struct field with empty name"))
	case t == nil:
		b.errs = append(b.errs, fmt.Errorf("dsl: struct field %q has nil type", name))
	default:
		b.fields[name] = t
	}
	return b
}

// Named sets the struct name.
func (b *structBuilder) Named(name string) *structBuilder {
	b.name = name
	return b
}

// Build validates the builder and returns the struct type.
func (b *structBuilder) Build() (*StructType, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	fields := make(map[string]typegraph.Node, len(b.fields))
	for k, v := range b.fields {
		fields[k] = v
	}
	return newStruct(b.name, fields), nil
}

// MustBuild is like Build but panics on error.
func (b *structBuilder) MustBuild() *StructType {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func newStruct(name string, fields map[string]typegraph.Node) *StructType {
	order := make([]string, 0, len(fields))
	for k := range fields {
		order = append(order, k)
	}
	sort.Strings(order)
	parts := make([]string, 0, 1+2*len(order))
	parts = append(parts, name)
	for _, k := range order {
		parts = append(parts, k, typegraph.RefKey(fields[k]))
	}
	return &StructType{name: name, fields: fields, order: order, key: typegraph.Fingerprint("struct", parts...)}
}

// Fields returns the field names in sorted order.
func (s *StructType) Fields() []string { return append([]string(nil), s.order...) }

// FieldType returns the type of the named field.
func (s *StructType) FieldType(name string) (typegraph.Node, bool) {
	t, ok := s.fields[name]
	return t, ok
}

func (s *StructType) Rename(name string) typegraph.Node { return newStruct(name, s.fields) }
func (s *StructType) TypeName() string                  { return s.name }
func (s *StructType) Category() typegraph.Category      { return typegraph.CategoryType }
func (s *StructType) Key() string                       { return s.key }

func (s *StructType) Edges() []typegraph.Node {
	out := make([]typegraph.Node, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.fields[k])
	}
	return out
}

func (s *StructType) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, s, "struct", s.name)
	if err != nil {
		return document.Entry{}, err
	}
	props := make(map[string]any, len(s.order))
	required := []string{}
	for _, k := range s.order {
		i, err := ix.IndexOf(s.fields[k])
		if err != nil {
			return document.Entry{}, fmt.Errorf("field %q: %w", k, err)
		}
		props[k] = i
		t, err := typegraph.Resolve(s.fields[k])
		if err != nil {
			return document.Entry{}, fmt.Errorf("field %q: %w", k, err)
		}
		if _, opt := t.(*OptionalType); !opt {
			required = append(required, k)
		}
	}
	return document.Entry{Name: name, Data: map[string]any{
		"type":       "struct",
		"properties": props,
		"required":   required,
	}}, nil
}
