// Package resolver implements the seven-step resolution algorithm from
// the design: normalize a requested tool name (falling back to the host
// PATH for tools no provider declares), parse its constraint, consult the
// lock file, fetch and select a candidate version, expand transitive
// dependencies into a graph, and topologically order the result into an
// install plan. Generalizes the predecessor's pkg/version.VersionResolver
// (constraint parsing + candidate fetch + selection for one tool, no
// dependency graph) by adding the dependency-expansion and install-plan
// steps the predecessor has no equivalent of.
package resolver

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/flanksource/vx/internal/graph"
	"github.com/flanksource/vx/internal/lockfile"
	"github.com/flanksource/vx/internal/manifest"
	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/version"
	"github.com/flanksource/vx/internal/versionsource"
	"github.com/flanksource/vx/internal/vxerrors"
	"github.com/flanksource/vx/internal/vxpath"
)

// ToolRequest is one top-level ask: "give me tool_name satisfying constraint".
// Force, when set, marks this specific tool (not its dependencies) for
// reinstall even if an on-disk copy of the resolved version already exists.
type ToolRequest struct {
	Tool       string
	Constraint string
	Force      bool
}

// ResolvedTool is one entry of a resolved install plan.
type ResolvedTool struct {
	Tool          string
	Version       string
	ResolvedFrom  string // the constraint string that produced Version
	Source        string // download URL used, or "bundled:<parent>", or "host-path"
	Ecosystem     string
	Executable    string   // on-disk path: existing if installed, expected otherwise
	CommandPrefix []string
	EnvVars       map[string]string // runtime-declared additions, e.g. GOROOT
	Dependencies  []string
	DownloadURL   string
	ChecksumURL   string
	NeedsInstall  bool
	Force         bool
	FromHostPath  bool
}

// Plan is the full, topologically ordered outcome of a Resolve call:
// dependencies always precede their dependents.
type Plan struct {
	Order []ResolvedTool
}

// ToolsNeedingInstall returns the subset of the plan's entries that aren't
// already on disk (and didn't come from the host PATH).
func (p *Plan) ToolsNeedingInstall() []ResolvedTool {
	var out []ResolvedTool
	for _, rt := range p.Order {
		if rt.NeedsInstall {
			out = append(out, rt)
		}
	}
	return out
}

// lookupPath is exec.LookPath, overridable in tests.
var lookupPath = exec.LookPath

// Resolver ties the manifest registry, a lock file, a version-source
// registry, and the on-disk store together to answer resolution requests.
// Per the design ("no singletons, no process-wide caches"), every cache this
// type owns (the per-process candidate list cache) is an explicit field on a
// value the caller constructs and threads through, not a package global.
type Resolver struct {
	registry  *manifest.Registry
	lock      *lockfile.LockFile
	versions  *versionsource.Registry
	paths     *vxpath.Paths
	candCache map[string][]string
}

// New builds a Resolver. lock may be nil, meaning "no lock consultation".
func New(registry *manifest.Registry, lock *lockfile.LockFile, versions *versionsource.Registry, paths *vxpath.Paths) *Resolver {
	return &Resolver{
		registry:  registry,
		lock:      lock,
		versions:  versions,
		paths:     paths,
		candCache: make(map[string][]string),
	}
}

// Resolve runs the seven-step algorithm for every request, expanding
// dependencies and returning one topologically ordered Plan spanning all of
// them.
func (r *Resolver) Resolve(ctx context.Context, requests []ToolRequest) (*Plan, error) {
	g := graph.New()
	resolved := make(map[string]ResolvedTool)
	forced := make(map[string]bool, len(requests))
	for _, req := range requests {
		if req.Force {
			forced[req.Tool] = true
		}
	}

	var resolveOne func(tool, constraint string, stack []string) error
	resolveOne = func(tool, constraint string, stack []string) error {
		if _, done := resolved[tool]; done {
			return nil
		}
		for _, s := range stack {
			if s == tool {
				return fmt.Errorf("dependency cycle detected: %v -> %s", stack, tool)
			}
		}

		// Step 1: name normalization, with host-PATH fallback.
		spec, ok := r.registry.Resolve(tool)
		if !ok {
			path, err := lookupPath(tool)
			if err != nil {
				return vxerrors.ToolNotFoundSuggest(tool, r.registry.SuggestSimilar(tool))
			}
			g.AddNode(tool)
			resolved[tool] = ResolvedTool{
				Tool:         tool,
				Executable:   path,
				Source:       "host-path",
				FromHostPath: true,
			}
			return nil
		}
		canonical := spec.Name
		g.AddNode(canonical)

		// A runtime declared with version_source.kind == "direct" that also
		// names exactly one dependency ships bundled inside that dependency's
		// install (npm/npx inside node) rather than being installed on its
		// own; resolve it to the dependency's bin directory instead of
		// running steps 2-5 independently.
		if bundled, isBundled := bundleParent(spec); isBundled {
			if err := resolveOne(bundled, "", append(stack, canonical)); err != nil {
				return err
			}
			parent := resolved[bundled]
			resolved[canonical] = ResolvedTool{
				Tool:          canonical,
				Version:       parent.Version,
				ResolvedFrom:  constraint,
				Source:        "bundled:" + bundled,
				Ecosystem:     string(spec.Ecosystem),
				Executable:    r.paths.ToolExecutablePath(bundled, parent.Version, spec.Executable),
				CommandPrefix: spec.CommandPrefix,
				Dependencies:  []string{bundled},
				NeedsInstall:  false,
			}
			g.AddEdge(canonical, bundled)
			return nil
		}

		// Step 2: constraint parsing. Empty/absent means Latest.
		// ParseConstraint("") alone would yield KindAny, which also admits
		// prereleases, so the empty case is mapped onto the literal "latest"
		// keyword here instead.
		requested := constraint
		if requested == "" {
			requested = "latest"
		}
		parsedConstraint, err := version.ParseConstraint(requested)
		if err != nil {
			return fmt.Errorf("tool %s: %w", tool, err)
		}

		strategyName := spec.VersionSource.Strategy
		if strategyName == "" {
			strategyName = string(spec.Ecosystem)
		}
		strat := version.StrategyFor(strategyName)

		// Step 3: lock consultation.
		var chosen string
		if r.lock != nil {
			if entry, ok := r.lock.Get(canonical); ok && entry.ResolvedFrom == constraint {
				chosen = entry.Version
			}
		}

		if chosen == "" {
			// Step 4: candidate fetch, cached per process by tool name.
			raw, ok := r.candCache[canonical]
			if !ok {
				raw, err = r.versions.Discover(ctx, spec.VersionSource, 0)
				if err != nil {
					return fmt.Errorf("discovering versions for %s: %w", tool, err)
				}
				r.candCache[canonical] = raw
			}

			// Step 5: selection.
			candidates := make([]version.Version, 0, len(raw))
			for _, s := range raw {
				v, err := version.Parse(strat.Normalize(s))
				if err != nil {
					continue
				}
				candidates = append(candidates, v)
			}
			best, ok := strat.SelectBest(parsedConstraint, candidates)
			if !ok {
				return vxerrors.NoMatchingVersion(tool, constraint)
			}
			chosen = best.Raw()
		}

		plat := platform.Current()
		data := map[string]string{"version": chosen, "os": plat.OS, "arch": plat.Arch}

		var downloadURL, checksumURL string
		if spec.URLTemplate != "" {
			downloadURL, err = manifest.RenderTemplate(spec.URLTemplate, data)
			if err != nil {
				return fmt.Errorf("tool %s: %w", tool, err)
			}
		}
		if spec.ChecksumURL != "" {
			checksumURL, err = manifest.RenderTemplate(spec.ChecksumURL, data)
			if err != nil {
				return fmt.Errorf("tool %s: %w", tool, err)
			}
		}

		installed := r.paths.IsInstalled(canonical, chosen, spec.Executable)
		force := forced[tool]

		var envVars map[string]string
		if len(spec.EnvVars) > 0 {
			envData := map[string]string{
				"version":     chosen,
				"os":          plat.OS,
				"arch":        plat.Arch,
				"install_dir": r.paths.ToolVersionDir(canonical, chosen),
			}
			envVars = make(map[string]string, len(spec.EnvVars))
			for k, v := range spec.EnvVars {
				rendered, err := manifest.RenderTemplate(v, envData)
				if err != nil {
					return fmt.Errorf("tool %s: rendering env var %s: %w", tool, k, err)
				}
				envVars[k] = rendered
			}
		}

		// Step 6: dependency expansion. Baseline dependencies always apply;
		// a ConstraintRule's Requires are unioned in only when its When
		// clause admits the version just selected and, if set, its Platform
		// filter matches the host (e.g. yarn only needs node under yarn 1.x).
		parsedChosen, err := version.Parse(strat.Normalize(chosen))
		if err != nil {
			return fmt.Errorf("tool %s: %w", tool, err)
		}
		deps := append([]manifest.RuntimeDependency{}, spec.Dependencies...)
		for _, rule := range spec.Constraints {
			matched, err := rule.Matches(parsedChosen, plat)
			if err != nil {
				return fmt.Errorf("tool %s: %w", tool, err)
			}
			if matched {
				deps = append(deps, rule.Requires...)
			}
		}

		var depNames []string
		for _, dep := range deps {
			depConstraint := dep.Version
			if depConstraint == "" || depConstraint == "recommended" {
				depConstraint = "latest"
			}
			if depConstraint == "*" {
				depConstraint = "latest"
			}
			if err := resolveOne(dep.Runtime, depConstraint, append(stack, canonical)); err != nil {
				if dep.Optional {
					continue
				}
				return err
			}
			g.AddEdge(canonical, dep.Runtime)
			depNames = append(depNames, dep.Runtime)
		}

		resolved[canonical] = ResolvedTool{
			Tool:          canonical,
			Version:       chosen,
			ResolvedFrom:  constraint,
			Source:        downloadURL,
			Ecosystem:     string(spec.Ecosystem),
			Executable:    r.paths.ToolExecutablePath(canonical, chosen, spec.Executable),
			CommandPrefix: spec.CommandPrefix,
			EnvVars:       envVars,
			Dependencies:  depNames,
			DownloadURL:   downloadURL,
			ChecksumURL:   checksumURL,
			NeedsInstall:  !installed || force,
			Force:         force,
		}
		return nil
	}

	for _, req := range requests {
		if err := resolveOne(req.Tool, req.Constraint, nil); err != nil {
			return nil, err
		}
	}

	// Step 7: install plan via topological sort, leaves (no deps) first.
	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	plan := &Plan{Order: make([]ResolvedTool, 0, len(order))}
	for _, name := range order {
		rt, ok := resolved[name]
		if !ok {
			continue
		}
		plan.Order = append(plan.Order, rt)
	}
	return plan, nil
}

// bundleParent reports the single dependency a "direct" version-source
// runtime is bundled inside, if any. npm/npx ship inside node's own
// installation rather than being independently downloadable, matching the
// real-world behavior of those tools' "direct" (exact-version-only) source.
func bundleParent(spec manifest.RuntimeSpec) (string, bool) {
	if spec.VersionSource.Kind != "direct" {
		return "", false
	}
	var required []string
	for _, dep := range spec.Dependencies {
		if !dep.Optional {
			required = append(required, dep.Runtime)
		}
	}
	if len(required) != 1 {
		return "", false
	}
	return required[0], true
}
