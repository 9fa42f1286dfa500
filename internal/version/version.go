// Package version implements the parsed Version value, the tagged-variant
// Constraint sum, and per-ecosystem selection strategies from
// the design, grounded on the predecessor's pkg/version (Normalize,
// Compare, semver-backed Constraint checking).
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed (major, minor, patch, prerelease?, build?) value.
// Total order follows semver rules: prerelease sorts lower than non-prerelease
// at an equal numeric triple.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
	Build      string
	raw        string
	sv         *semver.Version
}

// Raw returns the original string this Version was parsed from.
func (v Version) Raw() string {
	if v.raw != "" {
		return v.raw
	}
	return v.String()
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// IsPrerelease reports whether this version carries a prerelease component.
func (v Version) IsPrerelease() bool { return v.Prerelease != "" }

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than o,
// using semver total ordering (prerelease < release at equal major.minor.patch).
func (v Version) Compare(o Version) int {
	return v.sv.Compare(o.sv)
}

func (v Version) LessThan(o Version) bool    { return v.Compare(o) < 0 }
func (v Version) GreaterThan(o Version) bool { return v.Compare(o) > 0 }
func (v Version) Equal(o Version) bool       { return v.Compare(o) == 0 }

// Parse parses a version string, tolerating a leading "v" and sparse forms
// ("3" -> 3.0.0, "3.11" -> 3.11.0).
func Parse(s string) (Version, error) {
	raw := s
	norm := Normalize(s)
	norm = padSparse(norm)

	sv, err := semver.NewVersion(norm)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{
		Major:      sv.Major(),
		Minor:      sv.Minor(),
		Patch:      sv.Patch(),
		Prerelease: sv.Prerelease(),
		Build:      sv.Metadata(),
		raw:        raw,
		sv:         sv,
	}, nil
}

// MustParse is Parse, panicking on error. Used for constants and in tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// padSparse fills in missing minor/patch components: "3" -> "3.0.0",
// "3.11" -> "3.11.0". Prerelease/build suffixes are preserved.
func padSparse(s string) string {
	core, suffix := s, ""
	if idx := strings.IndexAny(s, "-+"); idx >= 0 {
		core, suffix = s[:idx], s[idx:]
	}
	dots := strings.Count(core, ".")
	switch dots {
	case 0:
		core += ".0.0"
	case 1:
		core += ".0"
	}
	return core + suffix
}

// Normalize strips common prefixes/suffixes from a raw version string:
// "v1.2.3" -> "1.2.3", "release-1.2.3" -> "1.2.3", "go1.22" -> "1.22", etc.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"version-", "Version-", "release-", "Release-", "go", "v", "V"} {
		if trimmed := strings.TrimPrefix(s, prefix); trimmed != s && looksLikeVersion(trimmed) {
			s = trimmed
			break
		}
	}
	if idx := strings.IndexAny(s, "-_"); idx > 0 {
		rest := s[idx+1:]
		if looksLikeVersion(rest) {
			s = rest
		}
	}
	s = strings.TrimSuffix(s, "-release")
	s = strings.TrimSuffix(s, "-Release")
	return s
}

func looksLikeVersion(s string) bool {
	if s == "" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return true
	}
	return len(s) > 1 && (s[0] == 'v' || s[0] == 'V') && s[1] >= '0' && s[1] <= '9'
}

// ExtractFromOutput pulls a version string out of free-form command output
// (e.g. "node --version" -> "v20.11.0") using pattern, or a sensible default.
func ExtractFromOutput(output, pattern string) (string, error) {
	if pattern == "" {
		pattern = `v?(\d+(?:\.\d+)*(?:-[a-zA-Z0-9-_.]+)?)`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid version pattern: %w", err)
	}
	matches := re.FindStringSubmatch(output)
	if len(matches) < 2 {
		return "", fmt.Errorf("version not found in output %q", output)
	}
	return Normalize(matches[1]), nil
}

// SortDescending sorts versions newest-first in place semantics (returns a
// new slice), skipping entries that fail to parse.
func SortDescending(versions []string) []string {
	type pair struct {
		raw string
		v   Version
	}
	var parsed []pair
	for _, s := range versions {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		parsed = append(parsed, pair{raw: s, v: v})
	}
	for i := 0; i < len(parsed)-1; i++ {
		for j := i + 1; j < len(parsed); j++ {
			if parsed[i].v.LessThan(parsed[j].v) {
				parsed[i], parsed[j] = parsed[j], parsed[i]
			}
		}
	}
	out := make([]string, len(parsed))
	for i, p := range parsed {
		out[i] = p.raw
	}
	return out
}
