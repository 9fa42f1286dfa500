// Package manifest implements the provider/runtime declarative model from
// the design: a ProviderManifest declares one or more RuntimeSpecs, each
// naming its executable, its transitive runtime dependencies, its archive
// layout, and where to discover its available versions. It generalizes the
// predecessor's types.Package (a flat, single-manager record with no dependency
// edges) into a small dependency tree per provider.
package manifest

import (
	"fmt"
	"strings"

	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/version"
)

// Ecosystem identifies the version-and-packaging convention a runtime
// follows, used to pick a version.Strategy and default layout conventions.
type Ecosystem string

const (
	EcosystemNode    Ecosystem = "node"
	EcosystemPython  Ecosystem = "python"
	EcosystemRust    Ecosystem = "rust"
	EcosystemGo      Ecosystem = "go"
	EcosystemJava    Ecosystem = "java"
	EcosystemSystem  Ecosystem = "system"
	EcosystemGeneric Ecosystem = "generic"
)

// RuntimeDependency is a transitive dependency edge from one runtime onto
// another, e.g. yarn -> node. Version constrains which versions of the
// dependency satisfy this edge; empty means "any currently resolved version".
type RuntimeDependency struct {
	Runtime  string `toml:"runtime"`
	Version  string `toml:"version,omitempty"`
	Optional bool   `toml:"optional,omitempty"`
}

// ConstraintRule adds dependencies that apply only for a subset of a
// runtime's own versions and, optionally, only on a subset of platforms:
// yarn's dependency on node is declared this way, since it only holds for
// yarn 1.x (yarn 2+ resolves its own toolchain). When is evaluated against
// the version the resolver just selected for the owning runtime; Platform,
// if set, is matched against the host platform.
type ConstraintRule struct {
	When     string              `toml:"when"`
	Platform string              `toml:"platform,omitempty"`
	Requires []RuntimeDependency `toml:"requires"`
}

// Matches reports whether this rule applies to the owning runtime's resolved
// version v on host platform plat.
func (c ConstraintRule) Matches(v version.Version, plat platform.Platform) (bool, error) {
	when, err := version.ParseConstraint(c.When)
	if err != nil {
		return false, fmt.Errorf("constraint rule %q: %w", c.When, err)
	}
	if !when.Satisfies(v) {
		return false, nil
	}
	if c.Platform == "" {
		return true, nil
	}
	// The filter may name a full "os-arch" pair or just an OS; either is
	// normalized the same way the ambient platform value is.
	if strings.Contains(c.Platform, "-") {
		rulePlat, err := platform.Parse(c.Platform)
		if err != nil {
			return false, fmt.Errorf("constraint rule platform %q: %w", c.Platform, err)
		}
		return rulePlat.Equal(plat), nil
	}
	return platform.Platform{OS: c.Platform, Arch: plat.Arch}.Normalize().OS == plat.Normalize().OS, nil
}

// ArchiveLayout describes how to turn a downloaded, extracted archive tree
// into the canonical per-version store layout: strip a leading path
// component, relocate/rename specific paths per platform, and list candidate
// executable locations to probe after layout is applied.
type ArchiveLayout struct {
	StripPrefix       string            `toml:"strip_prefix,omitempty"`
	ExecutablePaths   []string          `toml:"executable_paths,omitempty"`
	Rename            map[string]string `toml:"rename,omitempty"`
	ExecutableModeBits uint32           `toml:"executable_mode,omitempty"`
}

// VersionSource names where live version lists are fetched from and how raw
// entries are turned into candidate version strings.
type VersionSource struct {
	Kind        string `toml:"kind"` // github_releases | url | golang_dl | direct
	Repo        string `toml:"repo,omitempty"`
	URL         string `toml:"url,omitempty"`
	Strategy    string `toml:"strategy,omitempty"` // version.Strategy name; defaults to ecosystem
	VersionExpr string `toml:"version_expr,omitempty"`
}

// Hooks are CEL expressions evaluated by internal/pipeline before and after
// install, given {install_dir, version, os, arch} bindings.
type Hooks struct {
	PreInstall  []string `toml:"pre_install,omitempty"`
	PostInstall []string `toml:"post_install,omitempty"`
}

// RuntimeSpec is one installable runtime: a Node.js, a Python, a yarn, etc.
type RuntimeSpec struct {
	Name          string              `toml:"name"`
	Aliases       []string            `toml:"aliases,omitempty"`
	Executable    string              `toml:"executable"`
	Ecosystem     Ecosystem           `toml:"ecosystem"`
	Dependencies  []RuntimeDependency `toml:"dependencies,omitempty"`
	Constraints   []ConstraintRule    `toml:"constraints,omitempty"`
	Layout        ArchiveLayout       `toml:"layout"`
	VersionSource VersionSource       `toml:"version_source"`
	Hooks         *Hooks              `toml:"hooks,omitempty"`
	URLTemplate   string              `toml:"url_template,omitempty"`
	ChecksumURL   string              `toml:"checksum_url,omitempty"`
	CommandPrefix []string            `toml:"command_prefix,omitempty"` // e.g. uvx -> ["tool", "run"]
	EnvVars       map[string]string   `toml:"env_vars,omitempty"`       // e.g. go -> GOROOT = "{{.install_dir}}"
	Provider      string              `toml:"-"` // set to the owning manifest's name at load time
}

// ProviderManifest is the unit loaded from one embedded TOML file: a
// provider owns one or more related runtimes (e.g. the "node" provider owns
// the "node", "npm", and "npx" runtimes).
type ProviderManifest struct {
	Provider string        `toml:"provider"`
	Runtimes []RuntimeSpec `toml:"runtime"`
}

// Validate checks the invariants the design requires: every runtime has a
// non-empty name and executable, every dependency reference resolves within
// the manifest set passed in (which may span multiple providers), and no
// required (non-optional) dependency cycle exists.
func (m ProviderManifest) Validate(all map[string]RuntimeSpec) error {
	for _, rt := range m.Runtimes {
		if rt.Name == "" {
			return fmt.Errorf("provider %q: runtime with empty name", m.Provider)
		}
		if rt.Executable == "" {
			return fmt.Errorf("provider %q: runtime %q has no executable", m.Provider, rt.Name)
		}
		for _, dep := range rt.Dependencies {
			if _, ok := all[dep.Runtime]; !ok {
				return fmt.Errorf("provider %q: runtime %q depends on unknown runtime %q", m.Provider, rt.Name, dep.Runtime)
			}
		}
		for _, rule := range rt.Constraints {
			if _, err := version.ParseConstraint(rule.When); err != nil {
				return fmt.Errorf("provider %q: runtime %q: %w", m.Provider, rt.Name, err)
			}
			for _, dep := range rule.Requires {
				if _, ok := all[dep.Runtime]; !ok {
					return fmt.Errorf("provider %q: runtime %q: constraint rule %q depends on unknown runtime %q", m.Provider, rt.Name, rule.When, dep.Runtime)
				}
			}
		}
	}
	return detectCycle(m.Runtimes, all)
}

// detectCycle runs a DFS with three-color path marking over the
// required-dependency subgraph (optional edges don't force an install order
// and are excluded, matching the design's dependency-expansion semantics).
func detectCycle(runtimes []RuntimeSpec, all map[string]RuntimeSpec) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("dependency cycle detected: %v -> %s", path, name)
		}
		color[name] = gray
		if rt, ok := all[name]; ok {
			for _, dep := range rt.Dependencies {
				if dep.Optional {
					continue
				}
				if err := visit(dep.Runtime, append(path, name)); err != nil {
					return err
				}
			}
			for _, rule := range rt.Constraints {
				for _, dep := range rule.Requires {
					if dep.Optional {
						continue
					}
					if err := visit(dep.Runtime, append(path, name)); err != nil {
						return err
					}
				}
			}
		}
		color[name] = black
		return nil
	}
	for _, rt := range runtimes {
		if err := visit(rt.Name, nil); err != nil {
			return err
		}
	}
	return nil
}
