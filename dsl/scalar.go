package dsl

import (
	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/document"
)

// Scalar is a leaf type: integer, float, string or boolean.
type Scalar struct {
	kind   string
	name   string
	format string
	key    string
}

func newScalar(kind, name, format string) *Scalar {
	return &Scalar{kind: kind, name: name, format: format, key: typegraph.Fingerprint(kind, name, format)}
}

func String() *Scalar  { return newScalar("string", "", "") }
func Integer() *Scalar { return newScalar("integer", "", "") }
func Float() *Scalar   { return newScalar("float", "", "") }
func Boolean() *Scalar { return newScalar("boolean", "", "") }

// Format returns a copy with a string format hint (e.g. "email", "uuid").
func (s *Scalar) Format(f string) *Scalar { return newScalar(s.kind, s.name, f) }

// Kind returns the scalar kind name.
func (s *Scalar) Kind() string { return s.kind }

func (s *Scalar) Rename(name string) typegraph.Node { return newScalar(s.kind, name, s.format) }
func (s *Scalar) TypeName() string                  { return s.name }
func (s *Scalar) Category() typegraph.Category      { return typegraph.CategoryType }
func (s *Scalar) Edges() []typegraph.Node           { return nil }
func (s *Scalar) Key() string                       { return s.key }

func (s *Scalar) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, s, s.kind, s.name)
	if err != nil {
		return document.Entry{}, err
	}
	data := map[string]any{"type": s.kind}
	if s.format != "" {
		data["format"] = s.format
	}
	return document.Entry{Name: name, Data: data}, nil
}
