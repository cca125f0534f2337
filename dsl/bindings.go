package dsl

import (
	"fmt"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/document"
)

// RuntimeDef is a backend that hosts materializers.
type RuntimeDef struct {
	kind   string
	name   string
	config map[string]any
	key    string
}

// Runtime declares a runtime of the given kind (e.g. "deno", "http").
// config is copied and must be JSON serializable.
func Runtime(kind, name string, config map[string]any) *RuntimeDef {
	cfg := make(map[string]any, len(config))
	for k, v := range config {
		cfg[k] = v
	}
	return &RuntimeDef{kind: kind, name: name, config: cfg,
		key: typegraph.Fingerprint("runtime", kind, name, canonical(cfg))}
}

func (r *RuntimeDef) Kind() string                 { return r.kind }
func (r *RuntimeDef) TypeName() string             { return r.name }
func (r *RuntimeDef) Category() typegraph.Category { return typegraph.CategoryRuntime }
func (r *RuntimeDef) Edges() []typegraph.Node      { return nil }
func (r *RuntimeDef) Key() string                  { return r.key }

func (r *RuntimeDef) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, r, r.kind, r.name)
	if err != nil {
		return document.Entry{}, err
	}
	return document.Entry{Name: name, Data: map[string]any{"kind": r.kind, "config": r.config}}, nil
}

// Effect is the side effect a materializer performs.
type Effect string

const (
	EffectNone   Effect = "none"
	EffectCreate Effect = "create"
	EffectUpdate Effect = "update"
	EffectDelete Effect = "delete"
	EffectUpsert Effect = "upsert"
)

// Valid reports whether e is one of the declared effects.
func (e Effect) Valid() bool {
	switch e {
	case EffectNone, EffectCreate, EffectUpdate, EffectDelete, EffectUpsert:
		return true
	}
	return false
}

// MaterializerDef is an executable binding hosted by a runtime.
type MaterializerDef struct {
	name       string
	runtime    typegraph.Node
	effect     Effect
	idempotent bool
	data       map[string]any
	key        string
}

// Materializer declares an executable binding named name on rt. Effect
// defaults to EffectNone.
func Materializer(name string, rt typegraph.Node, data map[string]any) *MaterializerDef {
	d := make(map[string]any, len(data))
	for k, v := range data {
		d[k] = v
	}
	return newMaterializer(name, rt, EffectNone, false, d)
}

func newMaterializer(name string, rt typegraph.Node, effect Effect, idempotent bool, data map[string]any) *MaterializerDef {
	return &MaterializerDef{name: name, runtime: rt, effect: effect, idempotent: idempotent, data: data,
		key: typegraph.Fingerprint("materializer", name, rt.Key(), string(effect), fmt.Sprint(idempotent), canonical(data))}
}

// WithEffect returns a copy performing effect e.
func (m *MaterializerDef) WithEffect(e Effect, idempotent bool) *MaterializerDef {
	return newMaterializer(m.name, m.runtime, e, idempotent, m.data)
}

func (m *MaterializerDef) TypeName() string             { return m.name }
func (m *MaterializerDef) Category() typegraph.Category { return typegraph.CategoryMaterializer }
func (m *MaterializerDef) Edges() []typegraph.Node      { return []typegraph.Node{m.runtime} }
func (m *MaterializerDef) Key() string                  { return m.key }

func (m *MaterializerDef) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, m, "materializer", m.name)
	if err != nil {
		return document.Entry{}, err
	}
	rt, err := ix.IndexOf(m.runtime)
	if err != nil {
		return document.Entry{}, fmt.Errorf("materializer runtime: %w", err)
	}
	return document.Entry{Name: name, Data: map[string]any{
		"runtime": rt,
		"effect":  map[string]any{"effect": string(m.effect), "idempotent": m.idempotent},
		"data":    m.data,
	}}, nil
}

// PolicyDef is an access rule evaluated by a materializer.
type PolicyDef struct {
	name string
	mat  typegraph.Node
	key  string
}

// Policy declares an access rule.
func Policy(name string, mat typegraph.Node) *PolicyDef {
	return &PolicyDef{name: name, mat: mat, key: typegraph.Fingerprint("policy", name, mat.Key())}
}

func (p *PolicyDef) TypeName() string             { return p.name }
func (p *PolicyDef) Category() typegraph.Category { return typegraph.CategoryPolicy }
func (p *PolicyDef) Edges() []typegraph.Node      { return []typegraph.Node{p.mat} }
func (p *PolicyDef) Key() string                  { return p.key }

func (p *PolicyDef) Data(ix typegraph.Indexer) (document.Entry, error) {
	name, err := title(ix, p, "policy", p.name)
	if err != nil {
		return document.Entry{}, err
	}
	m, err := ix.IndexOf(p.mat)
	if err != nil {
		return document.Entry{}, fmt.Errorf("policy materializer: %w", err)
	}
	return document.Entry{Name: name, Data: map[string]any{"materializer": m}}, nil
}

// SecretDef names a secret supplied to the engine at deploy time.
type SecretDef struct {
	name string
	key  string
}

// Secret declares a secret by name.
func Secret(name string) *SecretDef {
	return &SecretDef{name: name, key: typegraph.Fingerprint("secret", name)}
}

func (s *SecretDef) TypeName() string             { return s.name }
func (s *SecretDef) Category() typegraph.Category { return typegraph.CategorySecret }
func (s *SecretDef) Edges() []typegraph.Node      { return nil }
func (s *SecretDef) Key() string                  { return s.key }

func (s *SecretDef) Data(typegraph.Indexer) (document.Entry, error) {
	return document.Entry{Name: s.name, Data: map[string]any{}}, nil
}
