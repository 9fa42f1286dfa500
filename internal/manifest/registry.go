package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"
)

// Registry is the fully loaded, validated set of known runtimes, indexed by
// name and by alias. It generalizes the predecessor's package-global
// config.globalRegistry (map[string]types.Package) into the provider/runtime
// tree, but is constructed explicitly via Load rather than a package init(),
// per the no-global-state design note: a *Registry is a value threaded
// through the executor/resolver, not a process-wide singleton.
type Registry struct {
	runtimes map[string]RuntimeSpec
	aliases  map[string]string
	order    []string
}

// Load builds a Registry from the embedded built-in provider manifests,
// overridden by any "*.toml" files found in overrideDir (a user's
// $VX_HOME/config directory). Mirrors the predecessor's init()-time
// LoadDefaultConfig + MergeWithDefaults two-step, but as an explicit call.
func Load(overrideDir string) (*Registry, error) {
	reg := &Registry{
		runtimes: make(map[string]RuntimeSpec),
		aliases:  make(map[string]string),
	}

	for _, path := range builtinProviderFiles {
		data, err := providerFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading embedded provider %s: %w", path, err)
		}
		if err := reg.addManifest(data, path); err != nil {
			return nil, err
		}
	}

	if overrideDir != "" {
		entries, err := os.ReadDir(overrideDir)
		if err == nil {
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				if !e.IsDir() && filepath.Ext(e.Name()) == ".toml" {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)
			for _, name := range names {
				data, err := os.ReadFile(filepath.Join(overrideDir, name))
				if err != nil {
					return nil, fmt.Errorf("reading override manifest %s: %w", name, err)
				}
				if err := reg.addManifest(data, name); err != nil {
					return nil, err
				}
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading override directory %s: %w", overrideDir, err)
		}
	}

	if err := reg.validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) addManifest(data []byte, source string) error {
	var pm ProviderManifest
	if err := toml.Unmarshal(data, &pm); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", source, err)
	}
	for _, rt := range pm.Runtimes {
		rt.Provider = pm.Provider
		if rt.Name == "" {
			return fmt.Errorf("manifest %s: runtime with empty name", source)
		}
		if _, exists := r.runtimes[rt.Name]; !exists {
			r.order = append(r.order, rt.Name)
		}
		r.runtimes[rt.Name] = rt
		for _, alias := range rt.Aliases {
			r.aliases[alias] = rt.Name
		}
	}
	return nil
}

func (r *Registry) validate() error {
	for _, name := range r.order {
		rt := r.runtimes[name]
		if err := (ProviderManifest{Provider: rt.Provider, Runtimes: []RuntimeSpec{rt}}).Validate(r.runtimes); err != nil {
			return err
		}
	}
	return nil
}

// Resolve looks up a runtime by its canonical name or any registered alias.
func (r *Registry) Resolve(nameOrAlias string) (RuntimeSpec, bool) {
	if rt, ok := r.runtimes[nameOrAlias]; ok {
		return rt, true
	}
	if canon, ok := r.aliases[nameOrAlias]; ok {
		return r.runtimes[canon], true
	}
	return RuntimeSpec{}, false
}

// Names returns every registered runtime name in load order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every registered runtime spec in load order.
func (r *Registry) All() []RuntimeSpec {
	out := make([]RuntimeSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.runtimes[name])
	}
	return out
}

// SuggestSimilar returns the closest registered name or alias to query by
// edit distance, for "did you mean" hints on an unresolved tool name. It
// returns "" if nothing is close enough to be worth suggesting.
func (r *Registry) SuggestSimilar(query string) string {
	const maxDistance = 3
	best, bestDist := "", maxDistance+1
	consider := func(candidate string) {
		d := levenshtein.ComputeDistance(query, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	for _, name := range r.order {
		consider(name)
	}
	for alias := range r.aliases {
		consider(alias)
	}
	if bestDist > maxDistance {
		return ""
	}
	return best
}
