package document

// Document is the compiled, reference-free typegraph consumed by the
// execution engine. Every cross reference inside an Entry's Data is an index
// into one of the category arrays.
type Document struct {
	Name string `json:"name" yaml:"name"`

	// Category arrays, in collector order.
	Types         []Entry `json:"types" yaml:"types"`
	Runtimes      []Entry `json:"runtimes" yaml:"runtimes"`
	Materializers []Entry `json:"materializers" yaml:"materializers"`
	Policies      []Entry `json:"policies" yaml:"policies"`
	Secrets       []Entry `json:"secrets" yaml:"secrets"`

	// Exposed lists the root bindings in declaration order.
	Exposed []Exposed `json:"exposed" yaml:"exposed"`

	// Applies holds the compiled injection paths of every function that
	// declares an apply tree.
	Applies []FunctionApply `json:"applies,omitempty" yaml:"applies,omitempty"`
}

// Entry is the self-description of one collected node.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Data any    `json:"data" yaml:"data"`
}

// Exposed binds a public name to a type index.
type Exposed struct {
	Name      string `json:"name" yaml:"name"`
	TypeIndex int    `json:"typeIndex" yaml:"typeIndex"`
}

// FunctionApply groups the apply paths of the function at types[Function].
type FunctionApply struct {
	Function int         `json:"function" yaml:"function"`
	Paths    []ApplyPath `json:"paths" yaml:"paths"`
}

// ApplyPath is one flattened leaf of an apply tree.
type ApplyPath struct {
	Path  []string   `json:"path" yaml:"path"`
	Value ApplyValue `json:"value" yaml:"value"`
}

// ApplyValue is either an inherit marker (optionally with an override
// payload) or an injected payload.
type ApplyValue struct {
	Inherit bool       `json:"inherit" yaml:"inherit"`
	Payload *Injection `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Injection sources.
const (
	SourceStatic  = "static"
	SourceContext = "context"
	SourceSecret  = "secret"
	SourceParent  = "parent"
)

// Injection is a serialized injected value.
type Injection struct {
	Source string `json:"source" yaml:"source"`
	Data   any    `json:"data" yaml:"data"`
}

// Entries returns the array stored for the given category name ("types",
// "runtimes", ...). Unknown names return nil.
func (d *Document) Entries(category string) []Entry {
	switch category {
	case "types":
		return d.Types
	case "runtimes":
		return d.Runtimes
	case "materializers":
		return d.Materializers
	case "policies":
		return d.Policies
	case "secrets":
		return d.Secrets
	}
	return nil
}

// SetEntries replaces the array for the given category name. It reports false
// when the name is not a document category.
func (d *Document) SetEntries(category string, es []Entry) bool {
	if es == nil {
		es = []Entry{}
	}
	switch category {
	case "types":
		d.Types = es
	case "runtimes":
		d.Runtimes = es
	case "materializers":
		d.Materializers = es
	case "policies":
		d.Policies = es
	case "secrets":
		d.Secrets = es
	default:
		return false
	}
	return true
}
