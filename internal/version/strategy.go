package version

import "sort"

// Strategy generalizes the predecessor's single hard-coded semver comparison
// path into a per-ecosystem pluggable selection procedure, so that ecosystems
// whose version strings don't follow strict semver (PEP 440, Go's "go1.22")
// can still plug into the shared resolver in internal/resolver.
type Strategy interface {
	// Name identifies the strategy, e.g. "semver", "pep440", "go".
	Name() string

	// Normalize adapts a raw, ecosystem-specific version string into the form
	// this strategy's Parse/Compare expect.
	Normalize(raw string) string

	// Satisfies reports whether candidate (already Normalized) meets c.
	Satisfies(c Constraint, candidate Version) bool

	// Compare orders two normalized versions, per Version.Compare semantics.
	Compare(a, b Version) int

	// SelectBest returns the highest version among candidates satisfying c,
	// or false if none match. Ties broken by candidate order (stable).
	SelectBest(c Constraint, candidates []Version) (Version, bool)
}

// defaultStrategy is the semver-backed Strategy used by every ecosystem that
// doesn't need special-casing (node, rust, most providers).
type defaultStrategy struct{}

// DefaultStrategy returns the standard semver Strategy.
func DefaultStrategy() Strategy { return defaultStrategy{} }

func (defaultStrategy) Name() string               { return "semver" }
func (defaultStrategy) Normalize(raw string) string { return Normalize(raw) }

func (defaultStrategy) Satisfies(c Constraint, candidate Version) bool {
	return c.Satisfies(candidate)
}

func (defaultStrategy) Compare(a, b Version) int { return a.Compare(b) }

func (s defaultStrategy) SelectBest(c Constraint, candidates []Version) (Version, bool) {
	return selectBest(s, c, candidates)
}

// selectBest is shared by every Strategy implementation: filter by Satisfies,
// then take the max by Compare. Stable with respect to input order on ties.
func selectBest(s Strategy, c Constraint, candidates []Version) (Version, bool) {
	var matching []Version
	for _, v := range candidates {
		if s.Satisfies(c, v) {
			matching = append(matching, v)
		}
	}
	if len(matching) == 0 {
		return Version{}, false
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return s.Compare(matching[i], matching[j]) > 0
	})
	return matching[0], true
}

// StrategyFor returns the Strategy registered for an ecosystem name (as used
// in a provider manifest's version_source.strategy field, or the runtime's
// ecosystem as a fallback). Unknown names get the default semver strategy.
func StrategyFor(name string) Strategy {
	switch name {
	case "python", "pep440":
		return PythonStrategy()
	case "go", "golang":
		return GoStrategy()
	default:
		return DefaultStrategy()
	}
}
