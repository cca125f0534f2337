package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/reoring/typegraph/document"
)

const declaration = `
name: cli
runtimes:
  deno: {kind: deno}
  idle: {kind: python}
materializers:
  m: {runtime: deno}
types:
  Id: integer
exposes:
  get:
    func: {input: {struct: {id: Id}}, output: Id, materializer: m}
`

func writeDecl(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	if err := os.WriteFile(path, []byte(declaration), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCompile_JSON(t *testing.T) {
	out, errOut, err := run(t, "compile", writeDecl(t), "--indent", "")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	doc, err := document.DecodeJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if doc.Name != "cli" || len(doc.Exposed) != 1 || doc.Exposed[0].Name != "get" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if !strings.Contains(errOut, `runtime "idle" is not used`) {
		t.Fatalf("expected warning on stderr, got %q", errOut)
	}
}

func TestCompile_YAMLToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.yaml")
	if _, _, err := run(t, "compile", writeDecl(t), "--format", "yaml", "-o", dst, "--name", "renamed"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc document.Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Name != "renamed" {
		t.Fatalf("name = %q", doc.Name)
	}
}

func TestCompile_BadFormat(t *testing.T) {
	if _, _, err := run(t, "compile", writeDecl(t), "--format", "toml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Fatalf("version output = %q", out)
	}
}

type closeFailure struct {
	bytes.Buffer
	err error
}

func (c *closeFailure) Close() error { return c.err }

func TestEncodeAndClose_ReportsCloseError(t *testing.T) {
	diskFull := errors.New("disk full")
	out := &closeFailure{err: diskFull}
	doc := &document.Document{Name: "x"}
	err := encodeAndClose(out, &compileOptions{format: "json"}, doc)
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected close error, got %v", err)
	}
	if !strings.Contains(out.String(), `"name":"x"`) {
		t.Fatalf("document was not written: %q", out.String())
	}
}

func TestCompile_UnwritableOutput(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "out.json")
	if _, _, err := run(t, "compile", writeDecl(t), "-o", dst); err == nil {
		t.Fatalf("expected error for unwritable output")
	}
}
