//go:build unix

package matcher

import (
	"os"
	"regexp"

	"golang.org/x/sys/unix"
)

// fileMatches maps path read-only and runs re over it. Unreadable and empty
// files never match.
func fileMatches(path string, re *regexp.Regexp) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.Size() == 0 || !st.Mode().IsRegular() {
		return false
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return false
	}
	defer unix.Munmap(data)

	return re.Match(data)
}
