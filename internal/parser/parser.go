package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/seitarof/gen-priv/internal/cdecl"
)

var (
	// ErrSyntax is returned for text that is not a supported member declaration.
	ErrSyntax = errors.New("unsupported declaration")
	// ErrIndirection is returned for function pointers with more than one level of indirection.
	ErrIndirection = errors.New("function pointer with multiple levels of indirection")
)

var (
	commentRe  = regexp.MustCompile(`(?s)(/\*.*?\*/|//.*?\n)`)
	funcPtrRe  = regexp.MustCompile(`^(.*)\(\s*((?:\*\s*)+)(\w*)\s*\)\s*\((.*)\)$`)
	arrayRe    = regexp.MustCompile(`^(.*)\[([^\[\]]*)\]$`)
	memberRe   = regexp.MustCompile(`^((?:\w+\s*[^\w,])+(?:\*\s*)*)([\w\s,]*)$`)
	customRe   = regexp.MustCompile(`^((struct|enum)\s+)?\w+$`)
	identRe    = regexp.MustCompile(`^\w+$`)
	whitespace = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
)

// Parser turns struct body source text into an AST.
type Parser interface {
	Parse(body string) (*cdecl.List, error)
}

type parserImpl struct{}

// New returns default parser.
func New() Parser {
	return &parserImpl{}
}

// Parse strips comments from a struct body, splits it into member
// declarations and builds the AST, descending into anonymous inline structs.
func (p *parserImpl) Parse(body string) (*cdecl.List, error) {
	code := whitespace.Replace(RemoveComments(body))
	tokens := tokenize(code)

	i, list, err := parseTokens(tokens, 0)
	if err != nil {
		return nil, err
	}
	if i != len(tokens) {
		return nil, fmt.Errorf("%w: unbalanced '}' in struct body", ErrSyntax)
	}
	return list, nil
}

// RemoveComments drops block and line comments.
func RemoveComments(code string) string {
	return commentRe.ReplaceAllString(code, "")
}

// tokenize splits on ';', '{' and '}', keeping the delimiters as tokens and
// dropping blank fragments.
func tokenize(code string) []string {
	var tokens []string
	start := 0
	push := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			tokens = append(tokens, s)
		}
	}
	for i, c := range code {
		switch c {
		case ';', '{', '}':
			push(code[start:i])
			push(string(c))
			start = i + 1
		}
	}
	push(code[start:])
	return tokens
}

// parseTokens consumes tokens until a closing brace or the end of input and
// returns the index it stopped at.
func parseTokens(tokens []string, i int) (int, *cdecl.List, error) {
	list := &cdecl.List{}
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == ";":
		case tok == "}":
			return i, list, nil
		case tok == "struct" && i+1 < len(tokens) && tokens[i+1] == "{":
			end, content, err := parseTokens(tokens, i+2)
			if err != nil {
				return 0, nil, err
			}
			if end >= len(tokens) {
				return 0, nil, fmt.Errorf("%w: inline struct is missing its closing brace", ErrSyntax)
			}
			end++
			if end >= len(tokens) || !identRe.MatchString(tokens[end]) {
				return 0, nil, fmt.Errorf("%w: inline struct must be followed by a member name", ErrSyntax)
			}
			list.Nodes = append(list.Nodes, &cdecl.SubStruct{Name: tokens[end], Content: content})
			i = end
		default:
			node, err := ParseDeclaration(tok)
			if err != nil {
				return 0, nil, err
			}
			if prop, ok := node.(*cdecl.Property); ok {
				prop.Statement = true
			}
			list.Nodes = append(list.Nodes, node)
		}
	}
	return i, list, nil
}

// ParseDeclaration parses one member declaration without its trailing ';'.
// Several names sharing one base type yield a List of statement properties.
func ParseDeclaration(code string) (cdecl.Node, error) {
	code = strings.TrimSpace(code)
	original := code

	var bitField *int
	if head, tail, ok := cutLast(code, ":"); ok {
		width, err := strconv.Atoi(strings.TrimSpace(tail))
		if err != nil {
			return nil, fmt.Errorf("%w: bad bit field width in `%s`", ErrSyntax, original)
		}
		code = strings.TrimSpace(head)
		bitField = &width
	}

	if m := funcPtrRe.FindStringSubmatch(code); m != nil {
		if bitField != nil {
			return nil, fmt.Errorf("%w: bit field on function pointer `%s`", ErrSyntax, original)
		}
		if extra := strings.Count(m[2], "*") - 1; extra != 0 {
			return nil, fmt.Errorf("%w (indirection count: %d for `%s`)", ErrIndirection, extra, original)
		}
		ret, err := ParseType(m[1])
		if err != nil {
			return nil, err
		}
		var args []*cdecl.Property
		if strings.TrimSpace(m[4]) != "" {
			for _, raw := range strings.Split(m[4], ",") {
				arg, err := parseArgument(raw)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}
		return &cdecl.Property{
			Type: &cdecl.FuncPtrType{Return: ret, Args: args},
			Name: m[3],
		}, nil
	}

	if m := arrayRe.FindStringSubmatch(code); m != nil {
		if bitField != nil {
			return nil, fmt.Errorf("%w: bit field on array `%s`", ErrSyntax, original)
		}
		node, err := ParseDeclaration(m[1])
		if err != nil {
			return nil, err
		}
		prop, ok := node.(*cdecl.Property)
		if !ok {
			return nil, fmt.Errorf("%w: array in multi-name declaration `%s`", ErrSyntax, original)
		}
		prop.Type = appendDimension(prop.Type, strings.TrimSpace(m[2]))
		return prop, nil
	}

	if m := memberRe.FindStringSubmatch(code); m != nil {
		t, err := ParseType(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w in `%s`", err, original)
		}
		var names []string
		for _, name := range strings.Split(m[2], ",") {
			if name = strings.TrimSpace(name); name != "" {
				if !identRe.MatchString(name) {
					return nil, fmt.Errorf("%w: bad member name %q in `%s`", ErrSyntax, name, original)
				}
				names = append(names, name)
			}
		}
		switch len(names) {
		case 0:
			return &cdecl.Property{Type: t, BitField: bitField}, nil
		case 1:
			return &cdecl.Property{Type: t, Name: names[0], BitField: bitField}, nil
		default:
			list := &cdecl.List{}
			for _, name := range names {
				list.Nodes = append(list.Nodes, &cdecl.Property{Type: t, Name: name, Statement: true})
			}
			return list, nil
		}
	}

	return nil, fmt.Errorf("%w: could not parse `%s`", ErrSyntax, original)
}

// parseArgument accepts a function pointer parameter, named or not.
func parseArgument(raw string) (*cdecl.Property, error) {
	node, err := ParseDeclaration(raw)
	if err != nil {
		// A lone type such as "void" has no name for the member pattern to find.
		t, typeErr := ParseType(raw)
		if typeErr != nil {
			return nil, err
		}
		return &cdecl.Property{Type: t}, nil
	}
	arg, ok := node.(*cdecl.Property)
	if !ok {
		return nil, fmt.Errorf("%w: function pointer argument `%s`", ErrSyntax, strings.TrimSpace(raw))
	}
	return arg, nil
}

// ParseType parses an abstract type such as "const char *" or "struct wl_seat".
func ParseType(code string) (cdecl.Type, error) {
	code = strings.TrimSpace(code)
	switch {
	case strings.HasSuffix(code, "*"):
		inner, err := ParseType(code[:len(code)-1])
		if err != nil {
			return nil, err
		}
		return &cdecl.PtrType{Inner: inner}, nil
	case strings.HasPrefix(code, "const "):
		inner, err := ParseType(code[len("const "):])
		if err != nil {
			return nil, err
		}
		return &cdecl.ConstType{Inner: inner}, nil
	case strings.HasSuffix(code, " const"):
		inner, err := ParseType(code[:len(code)-len(" const")])
		if err != nil {
			return nil, err
		}
		return &cdecl.ConstType{Inner: inner}, nil
	case cdecl.IsStdType(code):
		return cdecl.NewStdType(code), nil
	case customRe.MatchString(code):
		return cdecl.NewCustomType(code), nil
	}
	return nil, fmt.Errorf("%w: unknown type `%s`", ErrSyntax, code)
}

// appendDimension adds size as the innermost dimension, so that "a[2][3]"
// keeps its dimensions in source order.
func appendDimension(t cdecl.Type, size string) cdecl.Type {
	if arr, ok := t.(*cdecl.ArrayType); ok {
		return &cdecl.ArrayType{Inner: appendDimension(arr.Inner, size), Size: arr.Size}
	}
	return &cdecl.ArrayType{Inner: t, Size: size}
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
