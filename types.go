package typegraph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/reoring/typegraph/apply"
	"github.com/reoring/typegraph/document"
)

// Category is the fixed collection a node belongs to.
type Category int

const (
	CategoryNone Category = iota // traversed for its edges, never collected
	CategoryType
	CategoryRuntime
	CategoryMaterializer
	CategoryPolicy
	CategorySecret
)

const numCategories = int(CategorySecret) + 1

var categoryNames = [numCategories]string{"none", "types", "runtimes", "materializers", "policies", "secrets"}

// String returns the document array name of c.
func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) valid() bool { return c >= CategoryNone && int(c) < numCategories }

// Categories lists the collected categories in document order.
func Categories() []Category {
	return []Category{CategoryType, CategoryRuntime, CategoryMaterializer, CategoryPolicy, CategorySecret}
}

// Node is one element of the declaration graph. Nodes are immutable after
// construction.
type Node interface {
	// Category selects the collector set the node is stored in.
	Category() Category
	// Edges returns the direct dependencies, in a stable order.
	Edges() []Node
	// Key is the structural fingerprint. Equal keys within a category
	// collapse into one collected entry.
	Key() string
	// Data describes the node, referring to every dependency by index.
	Data(ix Indexer) (document.Entry, error)
}

// Indexer resolves collected nodes to their position in their category.
type Indexer interface {
	IndexOf(n Node) (int, error)
}

// Resolver is implemented by transparent nodes (proxies) that stand for
// another node. The walker and IndexOf follow them.
type Resolver interface {
	Resolve() (Node, error)
}

// Named is implemented by nodes carrying an explicit declared name.
type Named interface {
	TypeName() string
}

// Renamer is implemented by nodes that can be re-declared under a name.
type Renamer interface {
	Rename(name string) Node
}

// Injector is implemented by function nodes that carry an apply tree.
type Injector interface {
	Injections() apply.Tree
}

// Fingerprint builds a fixed-size structural key from a kind and the ordered
// parts that define the node. Parts are length-prefixed so that no two part
// lists share an encoding.
func Fingerprint(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// RefKey is the key n contributes to the key of a type that embeds it. A
// named type contributes ref(<name>), the same key as a proxy on that name,
// so direct and forward references to one declaration are equal. Type names
// are unique within a build (see Graph.Build).
func RefKey(n Node) string {
	if p, ok := n.(Proxy); ok {
		return p.Key()
	}
	if nm, ok := n.(Named); ok && nm.TypeName() != "" {
		return NameKey(nm.TypeName())
	}
	return n.Key()
}

// NameKey is the key of a reference to the type declared as name.
func NameKey(name string) string { return "ref(" + name + ")" }

// Label returns a short human-readable identity for n, used in errors and logs.
func Label(n Node) string {
	if n == nil {
		return "<nil>"
	}
	if nm, ok := n.(Named); ok && nm.TypeName() != "" {
		return fmt.Sprintf("%s %q", n.Category(), nm.TypeName())
	}
	k := n.Key()
	if len(k) > 24 {
		k = k[:24]
	}
	return fmt.Sprintf("%s %s", n.Category(), k)
}
