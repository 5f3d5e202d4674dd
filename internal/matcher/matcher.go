package matcher

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no source file defines the struct.
	ErrNotFound = errors.New("struct definition not found")
	// ErrAmbiguous is returned when more than one source file defines the struct.
	ErrAmbiguous = errors.New("struct defined in multiple places")
	// ErrUnterminated is returned when a definition has no matching closing brace.
	ErrUnterminated = errors.New("struct definition has no closing brace")
)

var sourceExtensions = map[string]bool{
	".h":   true,
	".hpp": true,
	".c":   true,
	".cpp": true,
	".cc":  true,
}

// DefinitionPattern matches the opening of "struct <name> {".
func DefinitionPattern(structName string) *regexp.Regexp {
	return regexp.MustCompile(`struct\s+` + regexp.QuoteMeta(structName) + `\s*\{`)
}

// StructMatcher finds the one source file that defines a struct.
type StructMatcher interface {
	Locate(structName string, previous string) (string, error)
}

type structMatcherImpl struct {
	root     string
	files    []string
	listed   bool
	patterns map[string]*regexp.Regexp
}

// NewStructMatcher returns a matcher over the source tree at root. The tree is
// listed at most once, on the first lookup that misses, so a matcher must not
// outlive the checkout it was created for.
func NewStructMatcher(root string) StructMatcher {
	return &structMatcherImpl{root: root, patterns: map[string]*regexp.Regexp{}}
}

// Locate returns previous when it still defines structName. Otherwise every
// source file under the root is scanned and exactly one must match.
func (m *structMatcherImpl) Locate(structName string, previous string) (string, error) {
	re := m.pattern(structName)
	if previous != "" && fileMatches(previous, re) {
		return previous, nil
	}

	files, err := m.sourceFiles()
	if err != nil {
		return "", err
	}

	var found []string
	for _, f := range files {
		if fileMatches(f, re) {
			found = append(found, f)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s under %s", ErrNotFound, structName, m.root)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %s in %s", ErrAmbiguous, structName, strings.Join(found, ", "))
	}
}

func (m *structMatcherImpl) pattern(structName string) *regexp.Regexp {
	re, ok := m.patterns[structName]
	if !ok {
		re = DefinitionPattern(structName)
		m.patterns[structName] = re
	}
	return re
}

func (m *structMatcherImpl) sourceFiles() ([]string, error) {
	if m.listed {
		return m.files, nil
	}
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExtensions[filepath.Ext(path)] {
			m.files = append(m.files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sources under %s: %w", m.root, err)
	}
	sort.Strings(m.files)
	m.listed = true
	return m.files, nil
}
