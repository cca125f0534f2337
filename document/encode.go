package document

import (
	"bytes"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// EncodeJSON writes the document as JSON. An empty indent produces compact
// output. Map keys are emitted in sorted order so output is reproducible.
func EncodeJSON(w io.Writer, d *Document, indent string) error {
	enc := j.NewEncoder(w)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("document: encode json: %w", err)
	}
	return nil
}

// MarshalJSON returns the compact JSON form of the document.
func MarshalJSON(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, d, ""); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeJSON reads a document previously written by EncodeJSON. Numbers
// inside entry data decode as json.Number.
func DecodeJSON(r io.Reader) (*Document, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("document: decode json: %w", err)
	}
	return &d, nil
}

// EncodeYAML writes the document as YAML with two-space indentation.
func EncodeYAML(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("document: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("document: encode yaml: %w", err)
	}
	return nil
}

// CanonicalJSON renders v as compact JSON with sorted map keys. It is used to
// fingerprint literal values.
func CanonicalJSON(v any) (string, error) {
	b, err := j.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
