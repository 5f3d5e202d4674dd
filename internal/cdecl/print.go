package cdecl

import (
	"fmt"
	"strconv"
	"strings"
)

// Indent is the indentation unit of generated C.
const Indent = "  "

// Namer maps a resolved reference to the versioned struct name of the layout
// valid at the reference's release.
type Namer interface {
	LayoutName(ref Ref) (string, bool)
}

// Printer renders types and nodes as C. A C declarator is split into a left
// part (before the declared name) and a right part (after it); left + name +
// right is a valid declaration.
//
// With a nil Names, resolved custom types print as their plain names.
type Printer struct {
	Names Namer
}

// Left returns everything that precedes the declared name. resolved selects
// versioned struct names for resolved by-value struct members.
func (p Printer) Left(t Type, resolved bool) string {
	switch t := t.(type) {
	case *StdType:
		return t.Name
	case *CustomType:
		if resolved && t.Ref != nil && p.Names != nil {
			if name, ok := p.Names.LayoutName(*t.Ref); ok {
				return "struct " + name
			}
		}
		s := ""
		if t.ExplicitStruct {
			s += "struct "
		}
		if t.ExplicitEnum {
			s += "enum "
		}
		return s + t.Name
	case *PtrType:
		s := p.Left(t.Inner, false)
		if _, ok := t.Inner.(*PtrType); !ok {
			s += " "
		}
		return s + "*"
	case *ConstType:
		return "const " + p.Left(t.Inner, resolved)
	case *FuncPtrType:
		return p.Type(t.Return) + " (*"
	case *ArrayType:
		if resolved {
			return p.Left(t.Inner, true)
		}
		return p.Left(t.Inner, false) + "*"
	default:
		panic(unknownVariant(t))
	}
}

// Right returns everything that follows the declared name.
func (p Printer) Right(t Type, resolved bool) string {
	switch t := t.(type) {
	case *StdType, *CustomType:
		return ""
	case *PtrType:
		return p.Right(t.Inner, false)
	case *ConstType:
		return p.Right(t.Inner, resolved)
	case *FuncPtrType:
		args := make([]string, 0, len(t.Args))
		for _, arg := range t.Args {
			args = append(args, p.Node(arg))
		}
		return ") (" + strings.Join(args, ", ") + ")"
	case *ArrayType:
		if resolved {
			return "[" + t.Size + "]" + p.Right(t.Inner, true)
		}
		return p.Right(t.Inner, false)
	default:
		panic(unknownVariant(t))
	}
}

// Type renders t as an abstract declarator in unresolved mode.
func (p Printer) Type(t Type) string {
	return p.Left(t, false) + p.Right(t, false)
}

// Node renders n in resolved mode. This is the canonical form used to decide
// whether two layouts are identical.
func (p Printer) Node(n Node) string {
	switch n := n.(type) {
	case *Property:
		s := p.Left(n.Type, true)
		if n.Name != "" {
			if _, ok := n.Type.(*PtrType); !ok {
				s += " "
			}
			s += n.Name
		}
		s += p.Right(n.Type, true)
		if n.BitField != nil {
			s += " : " + strconv.Itoa(*n.BitField)
		}
		if n.Statement {
			s += ";\n"
		}
		return s
	case *List:
		var b strings.Builder
		for _, child := range n.Nodes {
			b.WriteString(p.Node(child))
		}
		return b.String()
	case *SubStruct:
		var b strings.Builder
		b.WriteString("struct {")
		for _, line := range SplitLines(p.Node(n.Content)) {
			b.WriteString("\n" + Indent + line)
		}
		b.WriteString("\n} " + n.Name + ";\n")
		return b.String()
	default:
		panic(unknownVariant(n))
	}
}

// Equal reports whether a and b print identically.
func (p Printer) Equal(a, b Node) bool {
	return p.Node(a) == p.Node(b)
}

// TypeEqual reports whether a and b print identically as abstract declarators.
func (p Printer) TypeEqual(a, b Type) bool {
	return p.Type(a) == p.Type(b)
}

// String renders t without any registry lookups.
func String(t Type) string {
	return Printer{}.Type(t)
}

// SplitLines splits s into lines, dropping one trailing newline. An empty
// string has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func unknownVariant(v any) string {
	return fmt.Sprintf("cdecl: unknown variant %T", v)
}
