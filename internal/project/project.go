package project

import (
	"fmt"
	"log"
	"os"

	"github.com/seitarof/gen-priv/internal/cdecl"
	"github.com/seitarof/gen-priv/internal/matcher"
	"github.com/seitarof/gen-priv/internal/parser"
	"github.com/seitarof/gen-priv/internal/resolver"
	"github.com/seitarof/gen-priv/internal/version"
)

// Project is the registry of tracked structs for one multi-release run.
type Project struct {
	root         string
	structs      []*Struct
	typedefs     map[string]*Struct
	structNames  map[string]*Struct
	parser       parser.Parser
	resolver     resolver.Resolver
	logger       *log.Logger
	simplifyDone bool
}

// Option customizes a Project.
type Option func(*Project)

// WithLogger routes progress messages to logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Project) { p.logger = logger }
}

// New tracks typedefs, in order, inside the source tree at root.
func New(root string, typedefs []string, opts ...Option) *Project {
	p := &Project{
		root:        root,
		typedefs:    make(map[string]*Struct, len(typedefs)),
		structNames: make(map[string]*Struct, len(typedefs)),
		parser:      parser.New(),
		logger:      log.Default(),
	}
	for _, name := range typedefs {
		s := NewStruct(name)
		p.structs = append(p.structs, s)
		p.typedefs[s.Typedef] = s
		p.structNames[s.StructName] = s
	}
	p.resolver = resolver.New(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Structs returns the tracked structs in configuration order.
func (p *Project) Structs() []*Struct { return p.structs }

// Struct returns the tracked struct for typedef.
func (p *Project) Struct(typedef string) *Struct { return p.typedefs[typedef] }

// LookupTypedef implements resolver.Scope.
func (p *Project) LookupTypedef(name string) (string, bool) {
	s, ok := p.typedefs[name]
	if !ok {
		return "", false
	}
	return s.Typedef, true
}

// LookupStructName implements resolver.Scope.
func (p *Project) LookupStructName(name string) (string, bool) {
	s, ok := p.structNames[name]
	if !ok {
		return "", false
	}
	return s.Typedef, true
}

// HasVersion implements resolver.Scope.
func (p *Project) HasVersion(typedef string, v version.Version) bool {
	s, ok := p.typedefs[typedef]
	return ok && s.Lookup(v) != nil
}

// LayoutName implements cdecl.Namer.
func (p *Project) LayoutName(ref cdecl.Ref) (string, bool) {
	s, ok := p.typedefs[ref.Typedef]
	if !ok {
		return "", false
	}
	sv := s.Lookup(ref.Version)
	if sv == nil {
		return "", false
	}
	return sv.Name(), true
}

// Printer renders declarations with versioned names from this registry.
func (p *Project) Printer() cdecl.Printer {
	return cdecl.Printer{Names: p}
}

// Update reads the layout of every tracked struct from the tree, which must
// be checked out at v. Versions must be fed in ascending order. References
// between tracked structs are resolved once every struct has its v layout,
// so configuration order does not matter.
func (p *Project) Update(v version.Version) error {
	if p.simplifyDone {
		return fmt.Errorf("update %s: project already simplified", v)
	}
	m := matcher.NewStructMatcher(p.root)
	added := make([]*StructVersion, 0, len(p.structs))
	for _, s := range p.structs {
		if n := len(s.Versions); n > 0 && !s.Versions[n-1].Last.Less(v) {
			return fmt.Errorf("update %s: %s already has %s", v, s.Typedef, s.Versions[n-1].Last)
		}
		path, err := m.Locate(s.StructName, s.CodePath())
		if err != nil {
			return fmt.Errorf("could not find %s in %s: %w", s.Typedef, v, err)
		}
		sv, err := p.readVersion(path, s, v)
		if err != nil {
			return err
		}
		s.AddVersion(sv)
		added = append(added, sv)
	}
	for i, sv := range added {
		if err := p.resolver.Resolve(sv.AST, v); err != nil {
			return fmt.Errorf("resolve %s in %s: %w", p.structs[i].Typedef, v, err)
		}
	}
	return nil
}

func (p *Project) readVersion(path string, s *Struct, v version.Version) (*StructVersion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)

	body, err := matcher.ExtractBody(content, s.StructName)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", s.Typedef, path, err)
	}
	ast, err := p.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s in %s (%s): %w", s.Typedef, path, v, err)
	}
	copyrights, err := matcher.Copyrights(content)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", s.Typedef, path, err)
	}
	return &StructVersion{
		AST:        ast,
		First:      v,
		Last:       v,
		Path:       path,
		Copyrights: copyrights,
		structName: s.StructName,
	}, nil
}

// Simplify merges identical adjacent layouts of every struct until a full
// round merges nothing, then derives each struct's properties. Merging one
// struct can make another struct's layouts identical, since by-value members
// print the versioned name of the layout they resolve to. It returns the
// number of layouts dropped; a second call returns 0.
func (p *Project) Simplify() int {
	pr := p.Printer()
	total := 0
	for round := 1; ; round++ {
		p.logger.Printf("gen-priv: detecting identical versions, round %d", round)
		changed := false
		for _, s := range p.structs {
			if dropped := s.Simplify(pr); dropped > 0 {
				p.logger.Printf("gen-priv: found %d unnecessary versions of %s", dropped, s.Typedef)
				total += dropped
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for _, s := range p.structs {
		s.SetupProperties(pr, p.logger)
	}
	p.simplifyDone = true
	return total
}
