// Package config loads and saves the project manifest (the design): a
// TOML file declaring the tools a project depends on and any environment
// variables the executor should inject, adapted from the predecessor's
// pkg/config.LoadDepsConfig/SaveDepsConfig (which do the same job for
// deps.yaml) but re-targeted at TOML per the external-interface contract,
// and at a `[tools]` table keyed by tool name instead of the predecessor's
// `registry`+`dependencies` two-table split.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the project manifest's conventional filename.
const DefaultFileName = "vx.toml"

// ToolRequirement is one entry under [tools]: either a bare constraint
// string ("20") or a table ({ version = "1.22" }). A custom UnmarshalTOML
// accepts both forms; Save always writes the bare string form.
type ToolRequirement struct {
	Version string
}

// UnmarshalTOML accepts either a plain string or a table with a "version" key.
func (t *ToolRequirement) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		t.Version = v
		return nil
	case map[string]any:
		if ver, ok := v["version"].(string); ok {
			t.Version = ver
			return nil
		}
		return fmt.Errorf("tool table missing \"version\" key")
	default:
		return fmt.Errorf("unsupported tool requirement value: %T", data)
	}
}

// Config is the parsed project manifest.
type Config struct {
	Tools map[string]ToolRequirement `toml:"tools"`
	Env   map[string]string          `toml:"env"`
}

// Load reads and parses the project manifest at path. An empty path defaults
// to DefaultFileName in the current directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project manifest %s: %w", path, err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing project manifest %s: %w", path, err)
	}

	if cfg.Tools == nil {
		cfg.Tools = make(map[string]ToolRequirement)
	}
	if cfg.Env == nil {
		cfg.Env = make(map[string]string)
	}
	return &cfg, nil
}

// Save writes cfg back to path as TOML. An empty path defaults to
// DefaultFileName in the current directory.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultFileName
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating project manifest %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(marshalConfig(cfg)); err != nil {
		return fmt.Errorf("encoding project manifest %s: %w", path, err)
	}
	return nil
}

// marshalConfig flattens Config into scalar-string tool entries for
// encoding, since ToolRequirement doesn't implement MarshalTOML and
// BurntSushi/toml's encoder has no hook for it — this mirrors the design's
// example manifest, which always renders scalar constraint strings even
// though the parser accepts the table form too.
func marshalConfig(cfg *Config) map[string]any {
	tools := make(map[string]string, len(cfg.Tools))
	for name, req := range cfg.Tools {
		tools[name] = req.Version
	}
	return map[string]any{
		"tools": tools,
		"env":   cfg.Env,
	}
}
