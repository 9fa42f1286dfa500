package version

import (
	"regexp"
	"strings"
)

// pythonStrategy implements PEP 440-flavored ordering on top of the shared
// Version type: it treats "rc"/"b"/"a" pre-release markers as
// ordered-before-final the way CPython's packaging.version does, rather than
// the predecessor's bare lexical prerelease string comparison.
type pythonStrategy struct{}

// PythonStrategy returns the PEP 440 Strategy used for the Python and uv
// providers.
func PythonStrategy() Strategy { return pythonStrategy{} }

func (pythonStrategy) Name() string { return "pep440" }

var pep440PrePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)*)(?:(a|b|rc)(\d+))?$`)

// Normalize rewrites PEP 440 pre-release suffixes ("3.12.0rc1",
// "3.12.0b2", "3.12.0a1") into the semver-compatible "3.12.0-rc.1" form so the
// shared Version parser and total order apply unchanged.
func (pythonStrategy) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "v")
	m := pep440PrePattern.FindStringSubmatch(raw)
	if m == nil || m[2] == "" {
		return raw
	}
	stage := map[string]string{"a": "alpha", "b": "beta", "rc": "rc"}[strings.ToLower(m[2])]
	return m[1] + "-" + stage + "." + m[3]
}

func (s pythonStrategy) Satisfies(c Constraint, candidate Version) bool {
	return c.Satisfies(candidate)
}

func (pythonStrategy) Compare(a, b Version) int { return a.Compare(b) }

func (s pythonStrategy) SelectBest(c Constraint, candidates []Version) (Version, bool) {
	return selectBest(s, c, candidates)
}
