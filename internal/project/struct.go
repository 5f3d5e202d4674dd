package project

import (
	"log"
	"slices"
	"strings"
	"unicode"

	"github.com/seitarof/gen-priv/internal/cdecl"
	"github.com/seitarof/gen-priv/internal/version"
)

// StructVersion is one layout of a struct and the inclusive release range it
// is valid for.
type StructVersion struct {
	AST        *cdecl.List
	First      version.Version
	Last       version.Version
	Path       string
	Copyrights []string

	structName string
}

// Name is the versioned struct tag, mangled with the first release.
func (sv *StructVersion) Name() string {
	return sv.structName + "_" + sv.First.CID()
}

// RangeString describes the releases sv is valid for.
func (sv *StructVersion) RangeString() string {
	if sv.First.Equal(sv.Last) {
		return sv.First.String()
	}
	return sv.First.String() + " - " + sv.Last.String()
}

// ValidFor reports whether v falls in [First, Last].
func (sv *StructVersion) ValidFor(v version.Version) bool {
	return !v.Less(sv.First) && !sv.Last.Less(v)
}

// Property is one leaf member across every layout of a struct.
type Property struct {
	Type cdecl.Type
	Name string
	// Supported is indexed by layout ID.
	Supported []bool
}

// AllSupported reports whether every layout has the property.
func (p *Property) AllSupported() bool {
	for _, ok := range p.Supported {
		if !ok {
			return false
		}
	}
	return true
}

// IDName is the dotted name turned into a C identifier.
func (p *Property) IDName() string {
	return strings.ReplaceAll(p.Name, ".", "_")
}

// Struct is one tracked typedef and its layouts.
type Struct struct {
	Typedef    string
	StructName string
	// Versions holds the layouts, ordered and contiguous. After Simplify the
	// index of a layout is its layout ID.
	Versions []*StructVersion
	// Ingested lists every release a layout was read for, before merging.
	Ingested   []version.Version
	Properties []*Property

	copyrights map[string]bool
}

// NewStruct tracks typedef, whose struct tag is the typedef prefixed with "_".
func NewStruct(typedef string) *Struct {
	return &Struct{
		Typedef:    typedef,
		StructName: "_" + typedef,
		copyrights: map[string]bool{},
	}
}

// Lookup returns the layout valid for v, if any.
func (s *Struct) Lookup(v version.Version) *StructVersion {
	for _, sv := range s.Versions {
		if sv.ValidFor(v) {
			return sv
		}
	}
	return nil
}

// CodePath is the file the most recent layout was read from.
func (s *Struct) CodePath() string {
	if len(s.Versions) == 0 {
		return ""
	}
	return s.Versions[len(s.Versions)-1].Path
}

// AddVersion appends the layout of the next release.
func (s *Struct) AddVersion(sv *StructVersion) {
	s.Versions = append(s.Versions, sv)
	s.Ingested = append(s.Ingested, sv.First)
	for _, line := range sv.Copyrights {
		s.copyrights[line] = true
	}
}

// Copyrights returns every copyright notice seen across all layouts, sorted.
func (s *Struct) Copyrights() []string {
	out := make([]string, 0, len(s.copyrights))
	for line := range s.copyrights {
		out = append(out, line)
	}
	slices.Sort(out)
	return out
}

// Simplify merges each layout into its predecessor when both print the same,
// extending the predecessor's range. It returns the number of layouts dropped.
func (s *Struct) Simplify(p cdecl.Printer) int {
	if len(s.Versions) == 0 {
		return 0
	}
	merged := make([]*StructVersion, 0, len(s.Versions))
	prevText := ""
	dropped := 0
	for _, sv := range s.Versions {
		text := p.Node(sv.AST)
		if len(merged) > 0 && text == prevText {
			merged[len(merged)-1].Last = sv.Last
			dropped++
			continue
		}
		merged = append(merged, sv)
		prevText = text
	}
	s.Versions = merged
	return dropped
}

// SetupProperties derives the property list from the current layouts. A
// property whose type changes keeps only the newest type; support recorded
// for the old type is dropped.
func (s *Struct) SetupProperties(p cdecl.Printer, logger *log.Logger) {
	type entry struct {
		typ       cdecl.Type
		supported map[int]bool
	}
	var order []string
	entries := map[string]*entry{}

	for id, sv := range s.Versions {
		for _, f := range cdecl.Fields(sv.AST, "") {
			if e, ok := entries[f.Name]; ok && !p.TypeEqual(e.typ, f.Type) {
				logger.Printf(
					"gen-priv: warning: property %s changes type from %s to %s, ignoring old type",
					f.Name, p.Type(e.typ), p.Type(f.Type),
				)
				delete(entries, f.Name)
				order = slices.DeleteFunc(order, func(name string) bool { return name == f.Name })
			}
			if e, ok := entries[f.Name]; ok {
				e.supported[id] = true
				continue
			}
			entries[f.Name] = &entry{typ: f.Type, supported: map[int]bool{id: true}}
			order = append(order, f.Name)
		}
	}

	s.Properties = make([]*Property, 0, len(order))
	for _, name := range order {
		e := entries[name]
		supported := make([]bool, len(s.Versions))
		for id := range supported {
			supported[id] = e.supported[id]
		}
		s.Properties = append(s.Properties, &Property{Type: e.typ, Name: name, Supported: supported})
	}
}

// SnakeName turns the CamelCase typedef into snake_case.
func (s *Struct) SnakeName() string {
	return strings.Join(camelCaseToWords(s.Typedef), "_")
}

// HeaderName is the generated header file name.
func (s *Struct) HeaderName() string {
	return s.SnakeName() + "_priv.h"
}

// GuardName is the include guard macro of the generated header.
func (s *Struct) GuardName() string {
	return strings.ToUpper(strings.ReplaceAll(s.HeaderName(), ".", "_"))
}

// FuncPrefix prefixes every generated accessor.
func (s *Struct) FuncPrefix() string {
	return s.SnakeName() + "_priv_"
}

func camelCaseToWords(name string) []string {
	var words []string
	var word strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) && word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
		word.WriteRune(unicode.ToLower(r))
	}
	if word.Len() > 0 {
		words = append(words, word.String())
	}
	return words
}
