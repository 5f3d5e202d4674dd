package cdecl

// Node is one piece of a struct body. The variants are Property, List and
// SubStruct.
type Node interface {
	isNode()
}

// Property declares a single member. Name is empty for unnamed function
// pointer arguments.
type Property struct {
	Type     Type
	Name     string
	BitField *int
	// Statement marks a struct-level member, printed with a trailing ";".
	Statement bool
}

// List is an ordered sequence of sibling nodes.
type List struct {
	Nodes []Node
}

// SubStruct is an anonymous inline struct stored under a named member.
type SubStruct struct {
	Name    string
	Content Node
}

func (*Property) isNode()  {}
func (*List) isNode()      {}
func (*SubStruct) isNode() {}

// Field is one leaf member with its dotted path from the struct root.
type Field struct {
	Type Type
	Name string
}

// Fields flattens n into its leaf members. Members of anonymous inline
// structs are reported as "outer.inner".
func Fields(n Node, prefix string) []Field {
	switch n := n.(type) {
	case *Property:
		return []Field{{Type: n.Type, Name: prefix + n.Name}}
	case *List:
		var out []Field
		for _, child := range n.Nodes {
			out = append(out, Fields(child, prefix)...)
		}
		return out
	case *SubStruct:
		return Fields(n.Content, prefix+n.Name+".")
	default:
		panic(unknownVariant(n))
	}
}

// Walk calls fn for every type referenced by n, including function pointer
// return and argument types but not the types nested inside them.
func Walk(n Node, fn func(Type)) {
	switch n := n.(type) {
	case *Property:
		fn(n.Type)
	case *List:
		for _, child := range n.Nodes {
			Walk(child, fn)
		}
	case *SubStruct:
		Walk(n.Content, fn)
	default:
		panic(unknownVariant(n))
	}
}
