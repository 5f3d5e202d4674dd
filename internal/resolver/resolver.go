package resolver

import (
	"errors"
	"fmt"

	"github.com/seitarof/gen-priv/internal/cdecl"
	"github.com/seitarof/gen-priv/internal/version"
)

// ErrNotUpdated is returned when a type refers to a tracked struct that has no
// layout yet for the release being resolved.
var ErrNotUpdated = errors.New("referenced struct not updated for this release")

// Scope is the symbol table of tracked structs. Lookups return the typedef
// name, which is the registry key.
type Scope interface {
	LookupTypedef(name string) (string, bool)
	LookupStructName(name string) (string, bool)
	HasVersion(typedef string, v version.Version) bool
}

// Resolver binds custom types in an AST to tracked structs.
type Resolver interface {
	Resolve(node cdecl.Node, v version.Version) error
}

type resolverImpl struct {
	scope Scope
}

// New builds a resolver over scope.
func New(scope Scope) Resolver {
	return &resolverImpl{scope: scope}
}

// Resolve walks node and records, for every custom type naming a tracked
// struct, the struct key and release v. Unknown names stay opaque and
// already resolved types are left alone.
func (r *resolverImpl) Resolve(node cdecl.Node, v version.Version) error {
	var err error
	cdecl.Walk(node, func(t cdecl.Type) {
		if err == nil {
			err = r.resolveType(t, v)
		}
	})
	return err
}

func (r *resolverImpl) resolveType(t cdecl.Type, v version.Version) error {
	switch t := t.(type) {
	case *cdecl.StdType:
		return nil
	case *cdecl.CustomType:
		return r.resolveCustom(t, v)
	case *cdecl.PtrType:
		return r.resolveType(t.Inner, v)
	case *cdecl.ConstType:
		return r.resolveType(t.Inner, v)
	case *cdecl.ArrayType:
		return r.resolveType(t.Inner, v)
	case *cdecl.FuncPtrType:
		if err := r.resolveType(t.Return, v); err != nil {
			return err
		}
		for _, arg := range t.Args {
			if err := r.resolveType(arg.Type, v); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("resolver: unknown type variant %T", t)
	}
}

func (r *resolverImpl) resolveCustom(t *cdecl.CustomType, v version.Version) error {
	if t.Ref != nil || t.ExplicitEnum {
		return nil
	}

	var (
		key string
		ok  bool
	)
	if t.ExplicitStruct {
		key, ok = r.scope.LookupStructName(t.Name)
	} else {
		key, ok = r.scope.LookupTypedef(t.Name)
	}
	if !ok {
		return nil
	}
	if !r.scope.HasVersion(key, v) {
		return fmt.Errorf("%w: %s at %s", ErrNotUpdated, key, v)
	}

	t.Ref = &cdecl.Ref{Typedef: key, Version: v}
	return nil
}
