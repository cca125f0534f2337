package dsl_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/apply"
	"github.com/reoring/typegraph/document"
	d "github.com/reoring/typegraph/dsl"
)

// collect walks roots into a frozen collector.
func collect(t *testing.T, roots ...typegraph.Node) *typegraph.Collector {
	t.Helper()
	c := typegraph.NewCollector()
	if err := typegraph.Walk(c, roots...); err != nil {
		t.Fatalf("walk: %v", err)
	}
	c.Freeze()
	return c
}

func entryOf(t *testing.T, c *typegraph.Collector, n typegraph.Node) document.Entry {
	t.Helper()
	e, err := n.Data(c)
	if err != nil {
		t.Fatalf("data of %s: %v", typegraph.Label(n), err)
	}
	return e
}

func TestScalar_KeyAndData(t *testing.T) {
	if d.String().Key() == d.String().Format("email").Key() {
		t.Fatalf("format must be part of the key")
	}
	if d.Integer().Key() != d.Integer().Key() {
		t.Fatalf("equal scalars must share a key")
	}
	email := d.String().Format("email")
	c := collect(t, email)
	want := document.Entry{Name: "string_0", Data: map[string]any{"type": "string", "format": "email"}}
	if diff := cmp.Diff(want, entryOf(t, c, email)); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestStruct_FieldOrderDoesNotMatter(t *testing.T) {
	a := d.Struct().Field("a", d.Integer()).Field("b", d.String()).MustBuild()
	b := d.Struct().Field("b", d.String()).Field("a", d.Integer()).MustBuild()
	if a.Key() != b.Key() {
		t.Fatalf("field insertion order must not change the key")
	}
	if a.Key() == a.Rename("A").Key() {
		t.Fatalf("name must be part of the key")
	}
	if diff := cmp.Diff([]string{"a", "b"}, a.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestStruct_Data(t *testing.T) {
	s := d.Struct().Named("User").
		Field("id", d.Integer()).
		Field("nick", d.Optional(d.String())).
		MustBuild()
	c := collect(t, s)
	want := document.Entry{Name: "User", Data: map[string]any{
		"type":       "struct",
		"properties": map[string]any{"id": 1, "nick": 2},
		"required":   []string{"id"},
	}}
	if diff := cmp.Diff(want, entryOf(t, c, s)); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestStruct_BuildErrors(t *testing.T) {
	_, err := d.Struct().Field("", d.Integer()).Field("x", nil).Build()
	if err == nil {
		t.Fatalf("expected build error")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustBuild must panic on error")
		}
	}()
	d.Struct().Field("", d.Integer()).MustBuild()
}

func TestOptional_Default(t *testing.T) {
	plain := d.Optional(d.Integer())
	withDefault := plain.Default(3)
	if plain.Key() == withDefault.Key() {
		t.Fatalf("default must be part of the key")
	}
	if withDefault.Key() != d.Optional(d.Integer()).Default(3).Key() {
		t.Fatalf("equal defaults must share a key")
	}
	c := collect(t, withDefault)
	want := document.Entry{Name: "optional_0", Data: map[string]any{
		"type": "optional", "item": 1, "default_value": 3,
	}}
	if diff := cmp.Diff(want, entryOf(t, c, withDefault)); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestFunc_EdgesAndData(t *testing.T) {
	deno := d.Runtime("deno", "deno", map[string]any{"worker": "main"})
	mat := d.Materializer("add", deno, map[string]any{"fn": "add"}).WithEffect(d.EffectCreate, true)
	pol := d.Policy("public", d.Materializer("allow", deno, nil))
	in := d.Struct().Field("a", d.Integer()).Field("token", d.String()).MustBuild()
	f := d.Func(in, d.Integer(), mat).
		WithPolicy(pol).
		Apply(apply.Tree{"a": apply.Inherit(), "token": apply.Secret("TOKEN")})

	edges := f.Edges()
	if len(edges) != 5 {
		t.Fatalf("got %d edges; want input, output, materializer, policy, secret", len(edges))
	}
	if edges[4].Category() != typegraph.CategorySecret {
		t.Fatalf("last edge must be the secret, got %s", typegraph.Label(edges[4]))
	}
	if f.Key() == d.Func(in, d.Integer(), mat).WithPolicy(pol).Key() {
		t.Fatalf("apply tree must be part of the key")
	}

	c := collect(t, f)
	want := document.Entry{Name: "function_0", Data: map[string]any{
		"type":         "function",
		"input":        1,
		"output":       2,
		"materializer": 0,
		"policies":     []int{0},
	}}
	if diff := cmp.Diff(want, entryOf(t, c, f)); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	wantMat := document.Entry{Name: "add", Data: map[string]any{
		"runtime": 0,
		"effect":  map[string]any{"effect": "create", "idempotent": true},
		"data":    map[string]any{"fn": "add"},
	}}
	if diff := cmp.Diff(wantMat, entryOf(t, c, mat)); diff != "" {
		t.Fatalf("materializer mismatch (-want +got):\n%s", diff)
	}
}

func TestEffect_Valid(t *testing.T) {
	if !d.EffectUpsert.Valid() || d.Effect("drop").Valid() {
		t.Fatalf("unexpected effect validity")
	}
}

func TestTransforms(t *testing.T) {
	reg := typegraph.NewRegistry()
	if err := reg.Define("Id", d.Integer()); err != nil {
		t.Fatalf("define: %v", err)
	}
	n, err := reg.Ref("Id").ThenApply(d.AsList()).Get()
	if err != nil {
		t.Fatalf("as list: %v", err)
	}
	if _, ok := n.(*d.ListType); !ok {
		t.Fatalf("AsList produced %T", n)
	}

	if err := reg.Define("Rt", d.Runtime("deno", "deno", nil)); err != nil {
		t.Fatalf("define: %v", err)
	}
	_, err = reg.Ref("Rt").ThenApply(d.Renamed("Other")).Get()
	if err == nil {
		t.Fatalf("runtimes cannot be renamed")
	}
	var dangling *typegraph.DanglingReferenceError
	if errors.As(err, &dangling) {
		t.Fatalf("rename failure must not look like a dangling reference: %v", err)
	}
}
