package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// Major is the toolkit major release every tracked version belongs to.
const Major = 3

// ComboFactor separates minor and micro inside a combo integer.
const ComboFactor = 1000

var branchRe = regexp.MustCompile(fmt.Sprintf(`^gtk-%d-(\d+)$`, Major))

// Version identifies one toolkit release or release branch tip.
// Ordering and equality only look at (minor, micro).
type Version struct {
	checkout string
	minor    int
	micro    int
	released bool
}

// New builds a version. Unreleased versions are normally created with Unreleased.
func New(checkout string, minor, micro int, released bool) Version {
	return Version{checkout: checkout, minor: minor, micro: micro, released: released}
}

// Parse accepts release tags of the form MAJOR.MINOR.MICRO. Anything else,
// including other major releases and pre-releases, yields false.
func Parse(tag string) (Version, bool) {
	sv, err := semver.StrictNewVersion(tag)
	if err != nil {
		return Version{}, false
	}
	if sv.Major() != Major || sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, false
	}
	return New(tag, int(sv.Minor()), int(sv.Patch()), true), true
}

// MustParse is Parse for compile-time constants.
func MustParse(tag string) Version {
	v, ok := Parse(tag)
	if !ok {
		panic(fmt.Sprintf("version: invalid release tag %q", tag))
	}
	return v
}

// ParseBranch returns the minor release a stable branch name tracks.
func ParseBranch(branch string) (int, bool) {
	m := branchRe.FindStringSubmatch(branch)
	if m == nil {
		return 0, false
	}
	minor, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return minor, true
}

// Unreleased synthesizes the tip of a release branch, ordered just after the
// highest released micro known for that minor (pass -1 when none is known).
func Unreleased(branch string, minor, highestKnownMicro int) Version {
	return New(branch, minor, highestKnownMicro+1, false)
}

// Minor is the minor component; the major is always Major.
func (v Version) Minor() int { return v.minor }

// Micro is the micro component.
func (v Version) Micro() int { return v.micro }

// Released reports whether v is a tagged release rather than a branch tip.
func (v Version) Released() bool { return v.released }

// CheckoutName is the tag or branch that has to be checked out for v.
func (v Version) CheckoutName() string { return v.checkout }

// Combo encodes v as a single comparable integer, matching the expression
// the generated C code computes from the running library.
func (v Version) Combo() int { return v.minor*ComboFactor + v.micro }

// CID renders v as a fragment usable inside a C identifier.
func (v Version) CID() string {
	return fmt.Sprintf("v%d_%d_%d", Major, v.minor, v.micro)
}

func (v Version) String() string {
	s := fmt.Sprintf("v%d.%d.%d", Major, v.minor, v.micro)
	if !v.released {
		s += " (unreleased)"
	}
	return s
}

// Compare orders versions by (minor, micro).
func Compare(a, b Version) int {
	if a.minor != b.minor {
		if a.minor < b.minor {
			return -1
		}
		return 1
	}
	switch {
	case a.micro < b.micro:
		return -1
	case a.micro > b.micro:
		return 1
	}
	return 0
}

// Equal reports whether v and o name the same (minor, micro).
func (v Version) Equal(o Version) bool { return Compare(v, o) == 0 }

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return Compare(v, o) < 0 }

func (v Version) semver() *semver.Version {
	return semver.New(Major, uint64(v.minor), uint64(v.micro), "", "")
}
