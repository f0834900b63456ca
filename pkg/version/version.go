// Package version implements partial version specs and best-match
// selection against discovered engine installations.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plugforge/plugforge/pkg/types"
)

// Spec is a user-supplied, possibly partial version selector. Major is
// always present; an absent Minor or Patch matches any value at that
// level and below. The parser fills fields left to right, so a present
// Patch implies a present Minor.
type Spec struct {
	Major int
	Minor *int
	Patch *int
}

// ParseSpec parses a version string of one to three dot-separated
// non-negative integers, e.g. "4", "4.26" or "4.26.1".
func ParseSpec(s string) (Spec, error) {
	tokens := strings.Split(s, ".")
	if s == "" || len(tokens) > 3 {
		return Spec{}, fmt.Errorf("%w: invalid version string %q", types.ErrValidation, s)
	}

	// strconv.Atoi is the real integer-validity check here; it rejects
	// anything that is not a base-10 integer, and the sign check below
	// rejects negatives
	parts := make([]int, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			return Spec{}, fmt.Errorf("%w: invalid version component %q in %q", types.ErrValidation, tok, s)
		}
		parts[i] = n
	}

	spec := Spec{Major: parts[0]}
	if len(parts) > 1 {
		spec.Minor = &parts[1]
	}
	if len(parts) > 2 {
		spec.Patch = &parts[2]
	}
	return spec, nil
}

// String renders the spec back in its dotted form
func (s Spec) String() string {
	out := strconv.Itoa(s.Major)
	if s.Minor != nil {
		out += "." + strconv.Itoa(*s.Minor)
	}
	if s.Patch != nil {
		out += "." + strconv.Itoa(*s.Patch)
	}
	return out
}

// Matches reports whether an installed version satisfies the spec:
// major must be equal, and minor/patch must be equal where present.
func (s Spec) Matches(v types.EngineVersion) bool {
	if v.Major != s.Major {
		return false
	}
	if s.Minor != nil && v.Minor != *s.Minor {
		return false
	}
	if s.Patch != nil && v.Patch != *s.Patch {
		return false
	}
	return true
}

// FindBest returns the installation with the highest (major, minor,
// patch) among those matching the spec, or nil when nothing matches.
// The comparison is strict, so the first-found of duplicated versions
// wins.
func FindBest(installations []types.Installation, spec Spec) *types.Installation {
	var best *types.Installation
	for i := range installations {
		inst := &installations[i]
		if !spec.Matches(inst.Version) {
			continue
		}
		if best == nil || inst.Version.Compare(best.Version) > 0 {
			best = inst
		}
	}
	return best
}
