package typegraph

import (
	"errors"
	"fmt"
)

// Sentinels matched through errors.Is on the typed errors below.
var (
	ErrDanglingReference = errors.New("dangling reference")
	ErrFrozenCollector   = errors.New("collect after freeze")
	ErrUnknownNode       = errors.New("unknown node")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrNotExposable      = errors.New("not exposable")
)

// DanglingReferenceError is returned when a proxy is resolved while its name
// has no definition in the build, or when aliases only resolve to each other.
type DanglingReferenceError struct {
	Name  string
	Cycle bool
}

func (e *DanglingReferenceError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("typegraph: reference %q only resolves to other references", e.Name)
	}
	return fmt.Sprintf("typegraph: reference to undefined name %q", e.Name)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrDanglingReference }

// FrozenCollectorError is returned by Collect after Freeze.
type FrozenCollectorError struct {
	Node string
}

func (e *FrozenCollectorError) Error() string {
	return fmt.Sprintf("typegraph: collect %s after freeze", e.Node)
}

func (e *FrozenCollectorError) Unwrap() error { return ErrFrozenCollector }

// UnknownNodeError is returned by IndexOf for a node that was never collected.
type UnknownNodeError struct {
	Node string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("typegraph: %s was never collected", e.Node)
}

func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// DuplicateNameError is recorded when a name is defined twice with different
// structures.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("typegraph: %q is already defined", e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// NotExposableError is recorded when an exposed binding is not a type or is
// exposed twice.
type NotExposableError struct {
	Name   string
	Reason string
}

func (e *NotExposableError) Error() string {
	return fmt.Sprintf("typegraph: cannot expose %q: %s", e.Name, e.Reason)
}

func (e *NotExposableError) Unwrap() error { return ErrNotExposable }
