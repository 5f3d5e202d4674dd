// Package cdecl models C struct member declarations: the CType variants,
// the AST of a struct body, and the declarator printing rules that turn both
// back into valid C.
package cdecl

import (
	"strings"

	"github.com/seitarof/gen-priv/internal/version"
)

// Type is a C type. The set of variants is closed: StdType, CustomType,
// PtrType, ConstType, FuncPtrType and ArrayType.
type Type interface {
	isType()
}

// StdType is a builtin scalar such as "unsigned int" or "gboolean".
type StdType struct {
	Name string
}

// CustomType names a typedef, struct tag or enum tag. Once resolved, Ref
// points at the tracked struct it names.
type CustomType struct {
	Name           string
	ExplicitStruct bool
	ExplicitEnum   bool
	Ref            *Ref
}

// Ref is a registry key for a tracked struct plus the release at which the
// reference was resolved.
type Ref struct {
	Typedef string
	Version version.Version
}

// PtrType is one level of pointer indirection.
type PtrType struct {
	Inner Type
}

// ConstType is a const-qualified type.
type ConstType struct {
	Inner Type
}

// FuncPtrType is a function pointer. It already includes its single level of
// indirection and must not be wrapped in a PtrType.
type FuncPtrType struct {
	Return Type
	Args   []*Property
}

// ArrayType is a fixed-size array. Size is kept verbatim so that macro
// dimensions survive.
type ArrayType struct {
	Inner Type
	Size  string
}

func (*StdType) isType()     {}
func (*CustomType) isType()  {}
func (*PtrType) isType()     {}
func (*ConstType) isType()   {}
func (*FuncPtrType) isType() {}
func (*ArrayType) isType()   {}

// stdTypes may be combined in any order; validity of the combination is not checked.
var stdTypes = map[string]bool{
	"void":     true,
	"int":      true,
	"char":     true,
	"signed":   true,
	"unsigned": true,
	"short":    true,
	"long":     true,
	"float":    true,
	"double":   true,
	"uint32_t": true,
	"gint":     true,
	"guint":    true,
	"gchar":    true,
	"gboolean": true,
	"gpointer": true,
}

// IsStdType reports whether every word of name is a builtin type word.
func IsStdType(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !stdTypes[w] {
			return false
		}
	}
	return true
}

// NewStdType normalizes internal whitespace of a builtin type name.
func NewStdType(name string) *StdType {
	return &StdType{Name: strings.Join(strings.Fields(name), " ")}
}

// NewCustomType strips and records a leading struct or enum keyword.
func NewCustomType(name string) *CustomType {
	t := &CustomType{}
	words := strings.Fields(name)
	if len(words) > 1 {
		switch words[0] {
		case "struct":
			t.ExplicitStruct = true
			words = words[1:]
		case "enum":
			t.ExplicitEnum = true
			words = words[1:]
		}
	}
	t.Name = strings.Join(words, " ")
	return t
}
