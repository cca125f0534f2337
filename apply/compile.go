package apply

import (
	"github.com/reoring/typegraph/document"
)

// Compile flattens t into one ApplyPath per leaf. The walk is pre-order and
// visits keys in sorted order, so equal trees compile to equal output. The
// target function's input type is not consulted.
func Compile(t Tree) ([]document.ApplyPath, error) {
	out := []document.ApplyPath{}
	for _, k := range sortedKeys(t) {
		if err := compileValue(&out, []string{k}, t[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func compileValue(out *[]document.ApplyPath, path []string, v Value) error {
	if v.kind == KindNested {
		for _, k := range sortedKeys(v.fields) {
			if err := compileValue(out, appendPath(path, k), v.fields[k]); err != nil {
				return err
			}
		}
		return nil
	}
	av, err := compileLeaf(path, v)
	if err != nil {
		return err
	}
	*out = append(*out, document.ApplyPath{Path: path, Value: av})
	return nil
}

func compileLeaf(path []string, v Value) (document.ApplyValue, error) {
	switch v.kind {
	case KindInvalid:
		return document.ApplyValue{}, &IncompleteLeafError{Path: path}
	case KindInherit:
		if v.override == nil {
			return document.ApplyValue{Inherit: true}, nil
		}
		p, err := payload(path, *v.override)
		if err != nil {
			return document.ApplyValue{}, err
		}
		return document.ApplyValue{Inherit: true, Payload: p}, nil
	}
	p, err := payload(path, v)
	if err != nil {
		return document.ApplyValue{}, err
	}
	return document.ApplyValue{Payload: p}, nil
}

func payload(path []string, v Value) (*document.Injection, error) {
	switch v.kind {
	case KindLiteral:
		return &document.Injection{Source: document.SourceStatic, Data: v.literal}, nil
	case KindList:
		return &document.Injection{Source: document.SourceStatic, Data: v.list}, nil
	case KindContext:
		return &document.Injection{Source: document.SourceContext, Data: v.ref}, nil
	case KindSecret:
		return &document.Injection{Source: document.SourceSecret, Data: v.ref}, nil
	case KindParent:
		return &document.Injection{Source: document.SourceParent, Data: v.ref}, nil
	}
	return nil, &UnsupportedLeafError{Path: path, Kind: v.kind.String()}
}
