//go:build !unix

package matcher

import (
	"os"
	"regexp"
)

func fileMatches(path string, re *regexp.Regexp) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return re.Match(data)
}
