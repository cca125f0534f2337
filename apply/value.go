package apply

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/typegraph/document"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindInvalid Kind = iota // zero Value: a leaf with neither value nor inherit marker
	KindInherit
	KindLiteral
	KindList
	KindContext
	KindSecret
	KindParent
	KindNested
)

var kindNames = [...]string{"invalid", "inherit", "literal", "list", "context", "secret", "parent", "nested"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Value is one node of an apply tree. The variant is fixed at construction;
// use the constructors below rather than composite literals.
type Value struct {
	kind     Kind
	literal  any
	list     []any
	ref      string
	override *Value
	fields   Tree
}

// Tree is the keyed root of an apply tree.
type Tree map[string]Value

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// Inherit marks a field whose value is taken from the caller.
func Inherit() Value { return Value{kind: KindInherit} }

// InheritWith marks an inherited field carrying an override payload. The
// override must be a literal, list, context, secret or parent value. The
// returned error has no path; see WithPath.
func InheritWith(override Value) (Value, error) {
	switch override.kind {
	case KindLiteral, KindList, KindContext, KindSecret, KindParent:
	default:
		return Value{}, &UnsupportedLeafError{Kind: "inherit override of kind " + override.kind.String()}
	}
	o := override
	return Value{kind: KindInherit, override: &o}, nil
}

// String returns a string literal.
func String(s string) Value { return Value{kind: KindLiteral, literal: s} }

// Int returns an integer literal.
func Int(i int64) Value { return Value{kind: KindLiteral, literal: i} }

// Float returns a float literal.
func Float(f float64) Value { return Value{kind: KindLiteral, literal: f} }

// Bool returns a boolean literal.
func Bool(b bool) Value { return Value{kind: KindLiteral, literal: b} }

// Null returns an explicit null literal. It is distinct from the zero Value,
// which is an incomplete leaf.
func Null() Value { return Value{kind: KindLiteral} }

// Literal wraps a scalar Go value. Supported kinds are string, bool, the
// sized and unsized integer types, float32 and float64.
func Literal(v any) (Value, error) {
	s, ok := normalizeScalar(v)
	if !ok {
		return Value{}, &UnsupportedLeafError{Kind: describe(v)}
	}
	return Value{kind: KindLiteral, literal: s}, nil
}

// List returns an opaque list literal. Items may be scalars, []any or
// map[string]any; they are never recursed into by the compiler, and apply
// markers inside lists are rejected.
func List(items ...any) (Value, error) {
	out := make([]any, len(items))
	for i, it := range items {
		n, err := normalizeOpaque(it, []string{fmt.Sprintf("[%d]", i)})
		if err != nil {
			return Value{}, err
		}
		out[i] = n
	}
	return Value{kind: KindList, list: out}, nil
}

// Context injects the request context value stored under key.
func Context(key string) Value { return Value{kind: KindContext, ref: key} }

// Secret injects the named secret.
func Secret(name string) Value { return Value{kind: KindSecret, ref: name} }

// Parent injects the named field of the parent object.
func Parent(name string) Value { return Value{kind: KindParent, ref: name} }

// Nested returns a mapping that the compiler recurses into.
func Nested(t Tree) Value { return Value{kind: KindNested, fields: t} }

// FromAny converts an untyped tree into a Tree. Value leaves are kept as is,
// map[string]any becomes Nested, []any becomes an opaque List and scalars
// become literals. A nil leaf fails with IncompleteLeafError; any other Go
// type fails with UnsupportedLeafError.
func FromAny(m map[string]any) (Tree, error) {
	return fromMap(m, nil)
}

func fromMap(m map[string]any, path []string) (Tree, error) {
	t := make(Tree, len(m))
	for _, k := range sortedKeys(m) {
		v, err := fromAny(m[k], appendPath(path, k))
		if err != nil {
			return nil, err
		}
		t[k] = v
	}
	return t, nil
}

func fromAny(v any, path []string) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, &IncompleteLeafError{Path: path}
	case Value:
		if err := validate(x, path); err != nil {
			return Value{}, err
		}
		return x, nil
	case Tree:
		v := Nested(x)
		if err := validate(v, path); err != nil {
			return Value{}, err
		}
		return v, nil
	case map[string]any:
		t, err := fromMap(x, path)
		if err != nil {
			return Value{}, err
		}
		return Nested(t), nil
	case []any:
		l, err := List(x...)
		if err != nil {
			return Value{}, WithPath(err, path...)
		}
		return l, nil
	}
	s, ok := normalizeScalar(v)
	if !ok {
		return Value{}, &UnsupportedLeafError{Path: path, Kind: describe(v)}
	}
	return Value{kind: KindLiteral, literal: s}, nil
}

// validate checks a prebuilt value for incomplete leaves below path.
func validate(v Value, path []string) error {
	switch v.kind {
	case KindInvalid:
		return &IncompleteLeafError{Path: path}
	case KindNested:
		for _, k := range sortedKeys(v.fields) {
			if err := validate(v.fields[k], appendPath(path, k)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Secrets lists the secret names referenced anywhere in t, sorted and
// deduplicated. Inherit overrides are included.
func (t Tree) Secrets() []string {
	seen := map[string]struct{}{}
	var walk func(Value)
	walk = func(v Value) {
		switch v.kind {
		case KindSecret:
			seen[v.ref] = struct{}{}
		case KindInherit:
			if v.override != nil {
				walk(*v.override)
			}
		case KindNested:
			for _, c := range v.fields {
				walk(c)
			}
		}
	}
	for _, v := range t {
		walk(v)
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Key is a canonical fingerprint of t; equal trees have equal keys.
func (t Tree) Key() string {
	var b strings.Builder
	writeTreeKey(&b, t)
	return b.String()
}

func writeTreeKey(b *strings.Builder, t Tree) {
	b.WriteByte('{')
	for i, k := range sortedKeys(t) {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%q:", k)
		writeValueKey(b, t[k])
	}
	b.WriteByte('}')
}

func writeValueKey(b *strings.Builder, v Value) {
	b.WriteString(v.kind.String())
	switch v.kind {
	case KindInherit:
		if v.override != nil {
			b.WriteByte('(')
			writeValueKey(b, *v.override)
			b.WriteByte(')')
		}
	case KindLiteral:
		b.WriteByte('(')
		b.WriteString(canonical(v.literal))
		b.WriteByte(')')
	case KindList:
		b.WriteByte('(')
		b.WriteString(canonical(v.list))
		b.WriteByte(')')
	case KindContext, KindSecret, KindParent:
		fmt.Fprintf(b, "(%q)", v.ref)
	case KindNested:
		writeTreeKey(b, v.fields)
	}
}

func canonical(v any) string {
	s, err := document.CanonicalJSON(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return s
}

func normalizeScalar(v any) (any, bool) {
	switch x := v.(type) {
	case nil, string, bool, float64, int64:
		return x, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case float32:
		return float64(x), true
	}
	return nil, false
}

func normalizeOpaque(v any, path []string) (any, error) {
	switch x := v.(type) {
	case Value, Tree:
		return nil, &UnsupportedLeafError{Path: path, Kind: "apply marker inside list"}
	case []any:
		out := make([]any, len(x))
		for i, it := range x {
			n, err := normalizeOpaque(it, appendPath(path, fmt.Sprintf("[%d]", i)))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, it := range x {
			n, err := normalizeOpaque(it, appendPath(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}
	s, ok := normalizeScalar(v)
	if !ok {
		return nil, &UnsupportedLeafError{Path: path, Kind: describe(v)}
	}
	return s, nil
}

func describe(v any) string { return fmt.Sprintf("%T", v) }

func appendPath(path []string, k string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, k)
}

func sortedKeys[V any](m map[string]V) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
