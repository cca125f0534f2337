package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/apply"
	"github.com/reoring/typegraph/document"
	"github.com/reoring/typegraph/loader"
)

func TestLoadFile_Users(t *testing.T) {
	g, diag, err := loader.LoadFile(filepath.Join("testdata", "users.yaml"), loader.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	wantWarnings := []string{
		`runtime "spare" is not used by any materializer`,
		`secret "UNUSED" is not read by any apply tree`,
	}
	if diff := cmp.Diff(wantWarnings, diag.Warnings()); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}

	doc, err := g.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.Name != "users" {
		t.Fatalf("name = %q", doc.Name)
	}
	if len(doc.Exposed) != 1 || doc.Exposed[0].Name != "getUser" {
		t.Fatalf("exposed = %+v", doc.Exposed)
	}
	if !hasEntry(doc.Types, "User") {
		t.Fatalf("User missing from types: %v", doc.Types)
	}
	if diff := cmp.Diff([]string{"API_TOKEN"}, names(doc.Secrets)); diff != "" {
		t.Fatalf("secrets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"deno"}, names(doc.Runtimes)); diff != "" {
		t.Fatalf("unused runtime must not be serialized (-want +got):\n%s", diff)
	}
	want := []document.FunctionApply{{
		Function: doc.Exposed[0].TypeIndex,
		Paths: []document.ApplyPath{
			{Path: []string{"id"}, Value: document.ApplyValue{Inherit: true}},
			{Path: []string{"source"}, Value: document.ApplyValue{
				Payload: &document.Injection{Source: document.SourceStatic, Data: "web"},
			}},
			{Path: []string{"token"}, Value: document.ApplyValue{
				Payload: &document.Injection{Source: document.SourceSecret, Data: "API_TOKEN"},
			}},
		},
	}}
	if diff := cmp.Diff(want, doc.Applies); diff != "" {
		t.Fatalf("applies mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NameOverride(t *testing.T) {
	src := `
name: original
types:
  Id: integer
exposes:
  id: Id
`
	g, _, err := loader.Load([]byte(src), loader.Options{Name: "renamed"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.Name() != "renamed" {
		t.Fatalf("name = %q", g.Name())
	}
}

func TestLoad_MissingName(t *testing.T) {
	if _, _, err := loader.Load([]byte("types: {}\n"), loader.Options{}); err == nil {
		t.Fatalf("expected missing name error")
	}
}

func TestLoad_UnknownTopLevelKey(t *testing.T) {
	if _, _, err := loader.Load([]byte("name: x\nbogus: 1\n"), loader.Options{}); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoad_ErrorsAreAggregated(t *testing.T) {
	src := `
name: broken
runtimes:
  deno: {kind: deno}
materializers:
  m: {runtime: nope}
types:
  A: {list: }
  B: {bogus: integer}
exposes:
  f:
    func: {input: {struct: {}}, output: integer, materializer: missing}
`
	_, _, err := loader.Load([]byte(src), loader.Options{})
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *multierror.Error, got %v", err)
	}
	if len(merr.Errors) != 4 {
		t.Fatalf("got %d errors; want 4:\n%v", len(merr.Errors), err)
	}
	for _, e := range merr.Errors {
		if !strings.Contains(e.Error(), "line ") {
			t.Fatalf("error without position: %v", e)
		}
	}
}

func TestLoad_DanglingReferenceSurfacesAtBuild(t *testing.T) {
	src := `
name: dangling
exposes:
  items: {list: Missing}
`
	g, _, err := loader.Load([]byte(src), loader.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := g.Build(); !errors.Is(err, typegraph.ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}

const applyHeader = `
name: apply
secrets: [TOKEN]
runtimes:
  deno: {kind: deno}
materializers:
  m: {runtime: deno}
exposes:
  f:
    func:
      input: {struct: {x: integer}}
      output: integer
      materializer: m
      apply:
`

func compileApply(t *testing.T, body string) ([]document.ApplyPath, error) {
	t.Helper()
	g, _, err := loader.Load([]byte(applyHeader+body), loader.Options{})
	if err != nil {
		return nil, err
	}
	doc, err := g.Build()
	if err != nil {
		return nil, err
	}
	if len(doc.Applies) != 1 {
		t.Fatalf("got %d function applies; want 1", len(doc.Applies))
	}
	return doc.Applies[0].Paths, nil
}

func TestLoad_ApplyTags(t *testing.T) {
	got, err := compileApply(t, `
        a: !context user_id
        b: !parent id
        c: !inherit 5
        d:
          e: [1, two]
        t: !secret TOKEN
`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := []document.ApplyPath{
		{Path: []string{"a"}, Value: document.ApplyValue{Payload: &document.Injection{Source: document.SourceContext, Data: "user_id"}}},
		{Path: []string{"b"}, Value: document.ApplyValue{Payload: &document.Injection{Source: document.SourceParent, Data: "id"}}},
		{Path: []string{"c"}, Value: document.ApplyValue{Inherit: true, Payload: &document.Injection{Source: document.SourceStatic, Data: int64(5)}}},
		{Path: []string{"d", "e"}, Value: document.ApplyValue{Payload: &document.Injection{Source: document.SourceStatic, Data: []any{int64(1), "two"}}}},
		{Path: []string{"t"}, Value: document.ApplyValue{Payload: &document.Injection{Source: document.SourceSecret, Data: "TOKEN"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ApplyErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		is   error
		path []string
	}{
		{"null leaf", "        x:\n", apply.ErrIncompleteApplyLeaf, []string{"x"}},
		{"marker in list", "        tags: [a, !secret TOKEN]\n", apply.ErrUnsupportedApplyLeaf, []string{"tags", "[1]"}},
		{"unknown tag", "        x: !env HOME\n", apply.ErrUnsupportedApplyLeaf, []string{"x"}},
		{"nested override", "        x: !inherit {a: 1}\n", apply.ErrUnsupportedApplyLeaf, []string{"x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileApply(t, tc.body)
			if !errors.Is(err, tc.is) {
				t.Fatalf("expected %v, got %v", tc.is, err)
			}
			var path []string
			var incomplete *apply.IncompleteLeafError
			var unsupported *apply.UnsupportedLeafError
			switch {
			case errors.As(err, &incomplete):
				path = incomplete.Path
			case errors.As(err, &unsupported):
				path = unsupported.Path
			}
			if diff := cmp.Diff(tc.path, path); diff != "" {
				t.Fatalf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_UndeclaredSecret(t *testing.T) {
	_, err := compileApply(t, "        x: !secret OTHER\n")
	if err == nil || !strings.Contains(err.Error(), `undeclared secret "OTHER"`) {
		t.Fatalf("expected undeclared secret error, got %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := loader.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), loader.Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func hasEntry(es []document.Entry, name string) bool {
	for _, e := range es {
		if e.Name == name {
			return true
		}
	}
	return false
}

func names(es []document.Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name)
	}
	return out
}
