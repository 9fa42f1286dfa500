package version

import "strings"

// goStrategy strips the "go" toolchain prefix from version strings the way
// golang-dep's gps package normalizes Go release tags ("go1.22.3" ->
// "1.22.3") before handing them to the shared semver comparator.
type goStrategy struct{}

// GoStrategy returns the Strategy used for the Go provider.
func GoStrategy() Strategy { return goStrategy{} }

func (goStrategy) Name() string { return "go" }

func (goStrategy) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "go")
	return Normalize(raw)
}

func (s goStrategy) Satisfies(c Constraint, candidate Version) bool {
	return c.Satisfies(candidate)
}

func (goStrategy) Compare(a, b Version) int { return a.Compare(b) }

func (s goStrategy) SelectBest(c Constraint, candidates []Version) (Version, bool) {
	return selectBest(s, c, candidates)
}
