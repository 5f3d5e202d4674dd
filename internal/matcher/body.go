package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// copyrightRe only accepts notices terminated by a newline.
var copyrightRe = regexp2.MustCompile(`[Cc]opyright .*(?=\n)`, regexp2.None)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ExtractBody returns the text between the braces of the single
// "struct <structName> {" definition in content.
func ExtractBody(content, structName string) (string, error) {
	locs := DefinitionPattern(structName).FindAllStringIndex(content, -1)
	switch {
	case len(locs) == 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, structName)
	case len(locs) > 1:
		return "", fmt.Errorf("%w: %s declared %d times", ErrAmbiguous, structName, len(locs))
	}

	start := locs[0][1]
	depth := 1
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start:i], nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnterminated, structName)
}

// Copyrights returns the distinct copyright notices in content, sorted.
// Line endings are normalized first, so CRLF sources yield clean notices.
func Copyrights(content string) ([]string, error) {
	content = newlines.Replace(content)
	seen := map[string]bool{}
	var out []string
	m, err := copyrightRe.FindStringMatch(content)
	for ; m != nil && err == nil; m, err = copyrightRe.FindNextMatch(m) {
		line := m.String()
		if !seen[line] {
			seen[line] = true
			out = append(out, line)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("copyright scan: %w", err)
	}
	sort.Strings(out)
	return out, nil
}
