package typegraph

import "fmt"

// Collector owns one ordered, deduplicated set per category. It belongs to a
// single build and is not safe for concurrent use.
type Collector struct {
	sets   [numCategories]orderedSet
	frozen bool
}

type orderedSet struct {
	index map[string]int
	nodes []Node
}

// NewCollector returns an empty, unfrozen collector.
func NewCollector() *Collector {
	c := &Collector{}
	for i := range c.sets {
		c.sets[i].index = map[string]int{}
	}
	return c
}

// Collect adds n to its category set and reports whether it was new. Nodes
// of CategoryNone are never collected. After Freeze every call fails with
// FrozenCollectorError and leaves existing indices untouched.
func (c *Collector) Collect(n Node) (bool, error) {
	if c.frozen {
		return false, &FrozenCollectorError{Node: Label(n)}
	}
	cat := n.Category()
	if !cat.valid() {
		return false, fmt.Errorf("typegraph: %T has invalid category %d", n, int(cat))
	}
	if cat == CategoryNone {
		return false, nil
	}
	set := &c.sets[cat]
	k := n.Key()
	if _, ok := set.index[k]; ok {
		return false, nil
	}
	set.index[k] = len(set.nodes)
	set.nodes = append(set.nodes, n)
	return true, nil
}

// IndexOf returns the position of n within its category. Proxies are
// followed to their target first.
func (c *Collector) IndexOf(n Node) (int, error) {
	target, err := Resolve(n)
	if err != nil {
		return 0, err
	}
	cat := target.Category()
	if !cat.valid() || cat == CategoryNone {
		return 0, &UnknownNodeError{Node: Label(target)}
	}
	i, ok := c.sets[cat].index[target.Key()]
	if !ok {
		return 0, &UnknownNodeError{Node: Label(target)}
	}
	return i, nil
}

// Freeze forbids further collection. It cannot be undone.
func (c *Collector) Freeze() { c.frozen = true }

// Frozen reports whether Freeze was called.
func (c *Collector) Frozen() bool { return c.frozen }

// Len returns the number of nodes collected for cat.
func (c *Collector) Len(cat Category) int {
	if !cat.valid() {
		return 0
	}
	return len(c.sets[cat].nodes)
}

// Nodes returns the collected nodes of cat in index order.
func (c *Collector) Nodes(cat Category) []Node {
	if !cat.valid() {
		return nil
	}
	return append([]Node(nil), c.sets[cat].nodes...)
}
