package document_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/reoring/typegraph/document"
)

func sampleDoc() *document.Document {
	doc := &document.Document{
		Name:    "g",
		Exposed: []document.Exposed{{Name: "id", TypeIndex: 0}},
	}
	for _, c := range []string{"types", "runtimes", "materializers", "policies", "secrets"} {
		doc.SetEntries(c, nil)
	}
	doc.SetEntries("types", []document.Entry{{Name: "integer_0", Data: map[string]any{"type": "integer"}}})
	return doc
}

func TestMarshalJSON_Shape(t *testing.T) {
	b, err := document.MarshalJSON(sampleDoc())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"g","types":[{"name":"integer_0","data":{"type":"integer"}}],` +
		`"runtimes":[],"materializers":[],"policies":[],"secrets":[],` +
		`"exposed":[{"name":"id","typeIndex":0}]}`
	if string(b) != want {
		t.Fatalf("unexpected json:\n got: %s\nwant: %s", b, want)
	}
}

func TestDecodeJSON_ReadsEncodedDocument(t *testing.T) {
	doc := sampleDoc()
	doc.Applies = []document.FunctionApply{{
		Function: 0,
		Paths: []document.ApplyPath{{
			Path:  []string{"token"},
			Value: document.ApplyValue{Payload: &document.Injection{Source: document.SourceSecret, Data: "TOKEN"}},
		}},
	}}
	var buf bytes.Buffer
	if err := document.EncodeJSON(&buf, doc, "  "); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"types\"") {
		t.Fatalf("expected indented output:\n%s", buf.String())
	}
	got, err := document.DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("decoded document differs (-want +got):\n%s", diff)
	}
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := document.EncodeYAML(&buf, sampleDoc()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), "typeIndex: 0") {
		t.Fatalf("expected typeIndex key:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "applies") {
		t.Fatalf("empty applies must be omitted:\n%s", buf.String())
	}
	var got document.Document
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "g" || len(got.Types) != 1 || got.Types[0].Name != "integer_0" {
		t.Fatalf("unexpected document: %+v", got)
	}
	if diff := cmp.Diff(sampleDoc().Exposed, got.Exposed); diff != "" {
		t.Fatalf("exposed mismatch (-want +got):\n%s", diff)
	}
}

func TestEntries(t *testing.T) {
	doc := sampleDoc()
	if got := doc.Entries("types"); len(got) != 1 {
		t.Fatalf("Entries(types) = %v", got)
	}
	if got := doc.Entries("runtimes"); got == nil || len(got) != 0 {
		t.Fatalf("Entries(runtimes) = %#v; want empty non-nil", got)
	}
	if doc.Entries("bogus") != nil {
		t.Fatalf("unknown category must return nil")
	}
	if doc.SetEntries("bogus", nil) {
		t.Fatalf("SetEntries(bogus) must report false")
	}
}

func TestCanonicalJSON_SortsKeys(t *testing.T) {
	s, err := document.CanonicalJSON(map[string]any{"b": 1, "a": []any{"x"}})
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	if s != `{"a":["x"],"b":1}` {
		t.Fatalf("unexpected canonical form %s", s)
	}
}
