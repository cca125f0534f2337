package apply

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteApplyLeaf matches IncompleteLeafError via errors.Is.
	ErrIncompleteApplyLeaf = errors.New("incomplete apply leaf")
	// ErrUnsupportedApplyLeaf matches UnsupportedLeafError via errors.Is.
	ErrUnsupportedApplyLeaf = errors.New("unsupported apply leaf")
)

// IncompleteLeafError reports a leaf holding neither a value nor an inherit
// marker.
type IncompleteLeafError struct {
	Path []string
}

func (e *IncompleteLeafError) Error() string {
	return fmt.Sprintf("apply: incomplete leaf at %q", strings.Join(e.Path, "."))
}

func (e *IncompleteLeafError) Unwrap() error { return ErrIncompleteApplyLeaf }

// UnsupportedLeafError reports a leaf whose value cannot be serialized.
type UnsupportedLeafError struct {
	Path []string
	Kind string
}

func (e *UnsupportedLeafError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("apply: unsupported leaf (%s)", e.Kind)
	}
	return fmt.Sprintf("apply: unsupported leaf at %q (%s)", strings.Join(e.Path, "."), e.Kind)
}

func (e *UnsupportedLeafError) Unwrap() error { return ErrUnsupportedApplyLeaf }

// WithPath roots the leaf error inside err at path. Constructors such as
// InheritWith and List report paths relative to the value they build; the
// caller placing that value in a tree prefixes its own position.
func WithPath(err error, path ...string) error {
	var incomplete *IncompleteLeafError
	if errors.As(err, &incomplete) {
		incomplete.Path = joinPath(path, incomplete.Path)
		return err
	}
	var unsupported *UnsupportedLeafError
	if errors.As(err, &unsupported) {
		unsupported.Path = joinPath(path, unsupported.Path)
	}
	return err
}

func joinPath(prefix, rel []string) []string {
	out := make([]string, 0, len(prefix)+len(rel))
	return append(append(out, prefix...), rel...)
}
