package typegraph

import (
	"fmt"
	"sort"

	"github.com/reoring/typegraph/document"
)

// Transform is a deferred rewrite queued on a Proxy, e.g. "make optional".
// Key, when set, derives the key of the transformed node from the key of its
// input without running Fn; it must agree with the key Fn's result has.
// Transforms without Key append "|<Name>" to the proxy key.
type Transform struct {
	Name string
	Fn   func(Node) (Node, error)
	Key  func(inner string) string
}

// Registry is the build-scoped name table. It is an arena of slots: a name
// slot holds the node defined under that name, a derived slot holds a
// transform chain over a name slot and memoizes its result.
type Registry struct {
	slots  []slot
	byName map[string]int
}

type slot struct {
	name       string
	parent     int // -1 for name slots
	transforms []Transform
	node       Node
	resolved   bool
	resolving  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]int{}}
}

func (r *Registry) nameSlot(name string) int {
	if i, ok := r.byName[name]; ok {
		return i
	}
	r.slots = append(r.slots, slot{name: name, parent: -1})
	i := len(r.slots) - 1
	r.byName[name] = i
	return i
}

// Define binds name to n. Redefining a name with a structurally equal node is
// a no-op; a different node fails with DuplicateNameError.
func (r *Registry) Define(name string, n Node) error {
	i := r.nameSlot(name)
	s := &r.slots[i]
	if s.node != nil {
		if s.node.Key() == n.Key() {
			return nil
		}
		return &DuplicateNameError{Name: name}
	}
	s.node = n
	return nil
}

// Lookup returns the node defined under name.
func (r *Registry) Lookup(name string) (Node, bool) {
	i, ok := r.byName[name]
	if !ok || r.slots[i].node == nil {
		return nil, false
	}
	return r.slots[i].node, true
}

// Names lists the defined names in sorted order.
func (r *Registry) Names() []string {
	var out []string
	for name, i := range r.byName {
		if r.slots[i].node != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Ref returns a proxy for name. The name does not need to be defined yet.
func (r *Registry) Ref(name string) Proxy {
	return Proxy{reg: r, slot: r.nameSlot(name)}
}

// Proxy is a handle on a registry slot. It is a Node of CategoryNone whose
// only edge is its target; collectors and the walker see through it.
type Proxy struct {
	reg  *Registry
	slot int
}

var _ Node = Proxy{}
var _ Resolver = Proxy{}

// Name returns the referenced name.
func (p Proxy) Name() string { return p.reg.slots[p.slot].name }

// ThenApply queues t after any transform already pending on p. The returned
// proxy owns a fresh slot; p itself is unchanged.
func (p Proxy) ThenApply(t Transform) Proxy {
	s := p.reg.slots[p.slot]
	root := p.slot
	var chain []Transform
	if s.parent >= 0 {
		root = s.parent
		chain = s.transforms
	}
	next := make([]Transform, 0, len(chain)+1)
	next = append(append(next, chain...), t)
	p.reg.slots = append(p.reg.slots, slot{name: s.name, parent: root, transforms: next})
	return Proxy{reg: p.reg, slot: len(p.reg.slots) - 1}
}

// Get resolves the proxy. A pending transform chain runs once; the result is
// memoized in the slot and, when it carries a name not yet defined, is
// registered under that name.
func (p Proxy) Get() (Node, error) {
	s := p.reg.slots[p.slot]
	if s.parent < 0 {
		if s.node == nil {
			return nil, &DanglingReferenceError{Name: s.name}
		}
		return s.node, nil
	}
	if s.resolved {
		return s.node, nil
	}
	if s.resolving {
		return nil, &DanglingReferenceError{Name: s.name, Cycle: true}
	}
	p.reg.slots[p.slot].resolving = true
	n, err := p.applyChain(s)
	// transforms may have grown the arena; index again rather than hold a pointer
	cur := &p.reg.slots[p.slot]
	cur.resolving = false
	if err != nil {
		return nil, err
	}
	cur.node = n
	cur.resolved = true
	if nm, ok := n.(Named); ok {
		if name := nm.TypeName(); name != "" {
			if _, defined := p.reg.Lookup(name); !defined {
				_ = p.reg.Define(name, n)
			}
		}
	}
	return n, nil
}

func (p Proxy) applyChain(s slot) (Node, error) {
	n, err := Resolve(Proxy{reg: p.reg, slot: s.parent})
	if err != nil {
		return nil, err
	}
	for _, t := range s.transforms {
		n, err = t.Fn(n)
		if err != nil {
			return nil, fmt.Errorf("typegraph: reference %q: transform %s: %w", s.name, t.Name, err)
		}
	}
	return n, nil
}

// Resolve implements Resolver.
func (p Proxy) Resolve() (Node, error) { return p.Get() }

func (p Proxy) Category() Category { return CategoryNone }

func (p Proxy) Edges() []Node {
	n, err := p.Get()
	if err != nil {
		return nil
	}
	return []Node{n}
}

// Key identifies the proxy by name and transform chain, never by target,
// which keeps fingerprints of cyclic declarations finite. It equals RefKey of
// the node the proxy resolves to whenever every transform provides Key.
func (p Proxy) Key() string {
	s := p.reg.slots[p.slot]
	k := NameKey(s.name)
	for _, t := range s.transforms {
		if t.Key != nil {
			k = t.Key(k)
			continue
		}
		k += "|" + t.Name
	}
	return k
}

// Data describes the resolved target.
func (p Proxy) Data(ix Indexer) (document.Entry, error) {
	n, err := Resolve(p)
	if err != nil {
		return document.Entry{}, err
	}
	return n.Data(ix)
}

// Resolve follows Resolver nodes until a concrete node is reached. Alias
// chains that never reach one fail with a DanglingReferenceError.
func Resolve(n Node) (Node, error) {
	var seen map[string]struct{}
	for {
		r, ok := n.(Resolver)
		if !ok {
			return n, nil
		}
		k := n.Key()
		if _, dup := seen[k]; dup {
			name := k
			if p, ok := n.(Proxy); ok {
				name = p.Name()
			}
			return nil, &DanglingReferenceError{Name: name, Cycle: true}
		}
		if seen == nil {
			seen = map[string]struct{}{}
		}
		seen[k] = struct{}{}
		next, err := r.Resolve()
		if err != nil {
			return nil, err
		}
		n = next
	}
}
