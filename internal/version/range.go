package version

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Default support window. 3.24.19 shipped broken and is never supported.
const (
	DefaultMin    = "3.22.0"
	DefaultMax    = "3.70.0"
	DefaultDenied = "3.24.19"
)

// Range decides which releases are supported.
type Range struct {
	min, max   Version
	denied     []Version
	constraint *semver.Constraints
}

// NewRange builds the inclusive [min, max] window minus the denied releases.
// All arguments use release tag syntax.
func NewRange(min, max string, denied ...string) (*Range, error) {
	lo, ok := Parse(min)
	if !ok {
		return nil, fmt.Errorf("invalid minimum version %q", min)
	}
	hi, ok := Parse(max)
	if !ok {
		return nil, fmt.Errorf("invalid maximum version %q", max)
	}
	if hi.Less(lo) {
		return nil, fmt.Errorf("maximum version %s is below minimum %s", hi, lo)
	}

	parts := []string{">= " + min, "<= " + max}
	r := &Range{min: lo, max: hi}
	for _, d := range denied {
		v, ok := Parse(d)
		if !ok {
			return nil, fmt.Errorf("invalid denied version %q", d)
		}
		r.denied = append(r.denied, v)
		parts = append(parts, "!= "+d)
	}

	c, err := semver.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return nil, fmt.Errorf("support range: %w", err)
	}
	r.constraint = c
	return r, nil
}

// DefaultRange returns the window the tracked toolkit is supported on.
func DefaultRange() *Range {
	r, err := NewRange(DefaultMin, DefaultMax, DefaultDenied)
	if err != nil {
		panic(err)
	}
	return r
}

// Min is the oldest supported release.
func (r *Range) Min() Version { return r.min }

// Max is the newest supported release.
func (r *Range) Max() Version { return r.max }

// IsDenied reports whether v is one of the explicitly excluded releases.
func (r *Range) IsDenied(v Version) bool {
	return slices.ContainsFunc(r.denied, v.Equal)
}

// IsSupported reports whether v lies inside the window and is not denied.
func (r *Range) IsSupported(v Version) bool {
	return r.constraint.Check(v.semver())
}

// SupportedVersions turns raw tag and branch names into the ordered list of
// supported versions. Unrelated names are dropped silently. Each release
// branch contributes one unreleased version placed after its highest tag.
func SupportedVersions(tags, branches []string, r *Range, logger *log.Logger) []Version {
	if logger == nil {
		logger = log.Default()
	}

	result := make([]Version, 0, len(tags))
	for _, tag := range tags {
		v, ok := Parse(tag)
		if !ok {
			continue
		}
		if r.IsDenied(v) {
			logger.Printf("gen-priv: skipping denied release %s", v)
			continue
		}
		if r.IsSupported(v) {
			result = append(result, v)
		}
	}

	highestMicro := map[int]int{}
	for _, v := range result {
		if cur, ok := highestMicro[v.minor]; !ok || v.micro > cur {
			highestMicro[v.minor] = v.micro
		}
	}

	for _, branch := range branches {
		minor, ok := ParseBranch(branch)
		if !ok {
			continue
		}
		highest, known := highestMicro[minor]
		if !known {
			highest = -1
		}
		v := Unreleased(branch, minor, highest)
		if r.IsSupported(v) {
			result = append(result, v)
		}
	}

	slices.SortStableFunc(result, Compare)
	logger.Printf("gen-priv: found %d supported versions", len(result))
	return result
}
