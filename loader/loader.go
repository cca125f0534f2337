package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/dsl"
)

// declFile is the top level of a YAML declaration. Sections that must keep
// their declaration order are decoded as yaml.Node.
type declFile struct {
	Name          string    `yaml:"name"`
	Secrets       []string  `yaml:"secrets"`
	Runtimes      yaml.Node `yaml:"runtimes"`
	Materializers yaml.Node `yaml:"materializers"`
	Policies      yaml.Node `yaml:"policies"`
	Types         yaml.Node `yaml:"types"`
	Exposes       yaml.Node `yaml:"exposes"`
}

type runtimeDecl struct {
	Kind   string         `yaml:"kind"`
	Config map[string]any `yaml:"config"`
}

type materializerDecl struct {
	Runtime    string         `yaml:"runtime"`
	Effect     string         `yaml:"effect"`
	Idempotent bool           `yaml:"idempotent"`
	Data       map[string]any `yaml:"data"`
}

type policyDecl struct {
	Materializer string `yaml:"materializer"`
}

// LoadFile reads and loads the declaration at path.
func LoadFile(path string, opts Options) (*typegraph.Graph, Diag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &simpleDiag{}, fmt.Errorf("loader: %w", err)
	}
	return Load(data, opts)
}

// Load decodes a YAML declaration and replays it on a new typegraph.Graph.
// All declaration errors are reported together; the graph is only returned
// when there are none.
func Load(data []byte, opts Options) (*typegraph.Graph, Diag, error) {
	d := &simpleDiag{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f declFile
	if err := dec.Decode(&f); err != nil {
		return nil, d, fmt.Errorf("loader: invalid YAML: %w", err)
	}
	name := f.Name
	if opts.Name != "" {
		name = opts.Name
	}
	if name == "" {
		return nil, d, errors.New("loader: missing typegraph name")
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	l := &loader{
		g:        typegraph.New(name, typegraph.Options{Logger: logger, RequireFunctions: opts.RequireFunctions}),
		logger:   logger.Named("loader"),
		diag:     d,
		runtimes: map[string]*dsl.RuntimeDef{},
		mats:     map[string]*dsl.MaterializerDef{},
		policies: map[string]*dsl.PolicyDef{},
		used:     map[string]bool{},
	}
	l.declareSecrets(f.Secrets)
	l.loadRuntimes(&f.Runtimes)
	l.loadMaterializers(&f.Materializers)
	l.loadPolicies(&f.Policies)
	l.loadTypes(&f.Types)
	l.loadExposes(&f.Exposes)
	l.warnUnused()

	if err := l.errs.ErrorOrNil(); err != nil {
		return nil, d, err
	}
	if err := l.g.Err(); err != nil {
		return nil, d, err
	}
	l.logger.Debug("loaded declaration", "name", name,
		"runtimes", len(l.runtimes), "materializers", len(l.mats), "policies", len(l.policies),
		"types", len(l.g.Registry().Names()))
	return l.g, d, nil
}

type loader struct {
	g        *typegraph.Graph
	logger   hclog.Logger
	diag     *simpleDiag
	runtimes map[string]*dsl.RuntimeDef
	mats     map[string]*dsl.MaterializerDef
	policies map[string]*dsl.PolicyDef
	secrets  map[string]struct{}
	// used records "<section>/<name>" for every binding referenced elsewhere.
	used map[string]bool
	errs *multierror.Error
}

func (l *loader) errorf(n *yaml.Node, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if n != nil && n.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", n.Line, msg)
	}
	l.errs = multierror.Append(l.errs, errors.New("loader: "+msg))
}

// fail records err; n adds a line prefix when err does not carry one.
func (l *loader) fail(n *yaml.Node, err error) {
	if n != nil && n.Line > 0 {
		err = fmt.Errorf("loader: line %d: %w", n.Line, err)
	} else {
		err = fmt.Errorf("loader: %w", err)
	}
	l.errs = multierror.Append(l.errs, err)
}

type pair struct {
	key   string
	keyN  *yaml.Node
	value *yaml.Node
}

// pairs returns the entries of a mapping node in document order. An absent
// section yields no pairs.
func (l *loader) pairs(n *yaml.Node, section string) []pair {
	if n == nil || n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		l.errorf(n, "%s must be a mapping", section)
		return nil
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, pair{key: n.Content[i].Value, keyN: n.Content[i], value: n.Content[i+1]})
	}
	return out
}

func (l *loader) declareSecrets(names []string) {
	l.secrets = make(map[string]struct{}, len(names))
	for _, s := range names {
		if _, dup := l.secrets[s]; dup {
			l.errorf(nil, "secret %q declared twice", s)
			continue
		}
		l.secrets[s] = struct{}{}
	}
}

func (l *loader) loadRuntimes(n *yaml.Node) {
	for _, p := range l.pairs(n, "runtimes") {
		var rd runtimeDecl
		if err := p.value.Decode(&rd); err != nil {
			l.fail(p.value, fmt.Errorf("runtime %q: %w", p.key, err))
			continue
		}
		if rd.Kind == "" {
			l.errorf(p.value, "runtime %q: missing kind", p.key)
			continue
		}
		l.runtimes[p.key] = dsl.Runtime(rd.Kind, p.key, rd.Config)
	}
}

func (l *loader) loadMaterializers(n *yaml.Node) {
	for _, p := range l.pairs(n, "materializers") {
		var md materializerDecl
		if err := p.value.Decode(&md); err != nil {
			l.fail(p.value, fmt.Errorf("materializer %q: %w", p.key, err))
			continue
		}
		rt, ok := l.runtimes[md.Runtime]
		if !ok {
			l.errorf(p.value, "materializer %q: unknown runtime %q", p.key, md.Runtime)
			continue
		}
		l.used["runtimes/"+md.Runtime] = true
		m := dsl.Materializer(p.key, rt, md.Data)
		if md.Effect != "" || md.Idempotent {
			e := dsl.Effect(md.Effect)
			if e == "" {
				e = dsl.EffectNone
			}
			if !e.Valid() {
				l.errorf(p.value, "materializer %q: unknown effect %q", p.key, md.Effect)
				continue
			}
			m = m.WithEffect(e, md.Idempotent)
		}
		l.mats[p.key] = m
	}
}

func (l *loader) loadPolicies(n *yaml.Node) {
	for _, p := range l.pairs(n, "policies") {
		var pd policyDecl
		if err := p.value.Decode(&pd); err != nil {
			l.fail(p.value, fmt.Errorf("policy %q: %w", p.key, err))
			continue
		}
		m, ok := l.mats[pd.Materializer]
		if !ok {
			l.errorf(p.value, "policy %q: unknown materializer %q", p.key, pd.Materializer)
			continue
		}
		l.used["materializers/"+pd.Materializer] = true
		l.policies[p.key] = dsl.Policy(p.key, m)
	}
}

func (l *loader) loadTypes(n *yaml.Node) {
	for _, p := range l.pairs(n, "types") {
		t, err := l.typeExpr(p.value)
		if err != nil {
			l.fail(nil, fmt.Errorf("type %q: %w", p.key, err))
			continue
		}
		l.g.Define(p.key, t)
	}
}

func (l *loader) loadExposes(n *yaml.Node) {
	for _, p := range l.pairs(n, "exposes") {
		t, err := l.typeExpr(p.value)
		if err != nil {
			l.fail(nil, fmt.Errorf("expose %q: %w", p.key, err))
			continue
		}
		l.g.Expose(p.key, t)
	}
}

func (l *loader) warnUnused() {
	for _, name := range sortedNames(l.runtimes) {
		if !l.used["runtimes/"+name] {
			l.diag.warnf("runtime %q is not used by any materializer", name)
		}
	}
	for _, name := range sortedNames(l.mats) {
		if !l.used["materializers/"+name] {
			l.diag.warnf("materializer %q is not used by any function or policy", name)
		}
	}
	for _, name := range sortedNames(l.policies) {
		if !l.used["policies/"+name] {
			l.diag.warnf("policy %q is not used by any function", name)
		}
	}
	for _, name := range sortedNames(l.secrets) {
		if !l.used["secrets/"+name] {
			l.diag.warnf("secret %q is not read by any apply tree", name)
		}
	}
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
