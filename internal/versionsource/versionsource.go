// Package versionsource fetches the live list of installable versions for a
// runtime, dispatching on manifest.VersionSource.Kind the way the predecessor's
// pkg/manager Registry dispatches on Package.Manager — except here a source
// only discovers versions, it does not also resolve download URLs (that
// stays in internal/manifest's URLTemplate + internal/format's layout, per
// the design's separation of "what versions exist" from "how to fetch
// one").
package versionsource

import (
	"context"
	"fmt"

	"github.com/flanksource/vx/internal/manifest"
	"github.com/flanksource/vx/internal/version"
)

// Source discovers the versions available for one runtime.
type Source interface {
	// Name identifies the source kind, matching manifest.VersionSource.Kind.
	Name() string
	// Discover returns candidate version strings for the given spec, in the
	// order the source reports them; Registry.Discover sorts them
	// newest-first and applies limit.
	Discover(ctx context.Context, spec manifest.VersionSource, limit int) ([]string, error)
}

// ErrUnknownKind is returned by Registry.Discover for a VersionSource.Kind with no
// registered Source.
type ErrUnknownKind struct {
	Kind string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown version_source kind: %q", e.Kind)
}

// Registry maps version_source kinds to their Source implementation.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds a Registry with vx's four built-in source kinds:
// github_releases, golang_dl, url, and direct.
func NewRegistry(gh *GitHubSource) *Registry {
	if gh == nil {
		gh = NewGitHubSource("")
	}
	r := &Registry{sources: make(map[string]Source)}
	r.Register(gh)
	r.Register(NewGolangDLSource())
	r.Register(NewURLSource())
	r.Register(NewDirectSource())
	return r
}

// Register adds or replaces a Source under its own Name().
func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

// Discover looks up the Source for spec.Kind, fetches candidate versions,
// sorts them newest-first (dropping strings that do not parse as versions)
// and truncates the result to limit when limit > 0. spec.VersionExpr is not
// applied.
func (r *Registry) Discover(ctx context.Context, spec manifest.VersionSource, limit int) ([]string, error) {
	src, ok := r.sources[spec.Kind]
	if !ok {
		return nil, &ErrUnknownKind{Kind: spec.Kind}
	}
	raw, err := src.Discover(ctx, spec, limit)
	if err != nil {
		return nil, err
	}

	versions := version.SortDescending(raw)
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	return versions, nil
}
