// Package lockfile implements the TOML lock file: a
// stable, insertion-ordered record of resolved tool versions. Grounded on
// the shape of the predecessor's pkg/lock.Generator (resolve-then-persist,
// atomic write-then-rename) but trimmed to vx's single-platform,
// single-version-per-tool LockedTool model — the predecessor's Generator
// additionally resolves N platforms per dependency into one lock entry,
// which the LockedTool record here has no field for, so that multi-platform
// fan-out is out of scope here.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// SchemaVersion is the current root schema version written to every lock
// file. A mismatch on load triggers silent regeneration rather than a parse
// error
const SchemaVersion = "1"

// LockedTool is one resolved tool entry.
type LockedTool struct {
	Version      string            `toml:"version"`
	Source       string            `toml:"source,omitempty"`
	ResolvedFrom string            `toml:"resolved_from"`
	Ecosystem    string            `toml:"ecosystem,omitempty"`
	Dependencies []string          `toml:"dependencies,omitempty"`
	Metadata     map[string]string `toml:"metadata,omitempty"`
}

// LockFile is an insertion-ordered ToolName -> LockedTool map.
type LockFile struct {
	SchemaVersion string
	entries       map[string]LockedTool
	order         []string
}

// New creates an empty LockFile at the current schema version.
func New() *LockFile {
	return &LockFile{
		SchemaVersion: SchemaVersion,
		entries:       make(map[string]LockedTool),
	}
}

// Get returns the locked entry for name, if present.
func (l *LockFile) Get(name string) (LockedTool, bool) {
	entry, ok := l.entries[name]
	return entry, ok
}

// Set inserts or replaces the entry for name, appending to the insertion
// order only on first insert.
func (l *LockFile) Set(name string, entry LockedTool) {
	if _, exists := l.entries[name]; !exists {
		l.order = append(l.order, name)
	}
	l.entries[name] = entry
}

// Delete removes name from the lock file.
func (l *LockFile) Delete(name string) {
	if _, exists := l.entries[name]; !exists {
		return
	}
	delete(l.entries, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Names returns locked tool names in insertion order.
func (l *LockFile) Names() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Validate checks the design's invariant: every dependency named inside a
// LockedTool must itself be a key in this LockFile.
func (l *LockFile) Validate() error {
	for _, name := range l.order {
		entry := l.entries[name]
		for _, dep := range entry.Dependencies {
			if _, ok := l.entries[dep]; !ok {
				return fmt.Errorf("lock file inconsistent: %s depends on %s, which is not locked", name, dep)
			}
		}
	}
	return nil
}

// rawLockFile is the on-disk TOML shape.
type rawLockFile struct {
	SchemaVersion string                `toml:"schema_version"`
	Tools         map[string]LockedTool `toml:"tools"`
}

// Load reads and parses the lock file at path. A schema-version mismatch
// (or a missing file) returns a fresh, empty LockFile rather than an error,
// — the caller re-resolves and overwrites it.
func Load(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lock file %s: %w", path, err)
	}

	var raw rawLockFile
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parsing lock file %s: %w", path, err)
	}

	if raw.SchemaVersion != SchemaVersion {
		return New(), nil
	}

	lf := &LockFile{
		SchemaVersion: raw.SchemaVersion,
		entries:       make(map[string]LockedTool, len(raw.Tools)),
	}

	// BurntSushi/toml's MetaData.Keys() reports keys in file order, so the
	// insertion order a reader sees on disk survives the round trip even
	// though raw.Tools itself is an unordered map.
	for _, key := range meta.Keys() {
		if len(key) == 2 && key[0] == "tools" {
			name := key[1]
			if entry, ok := raw.Tools[name]; ok {
				lf.Set(name, entry)
			}
		}
	}
	// Fall back to map iteration for any tool TOML's key-tracking missed
	// (shouldn't happen for well-formed files, but keeps Load total).
	for name, entry := range raw.Tools {
		if _, seen := lf.entries[name]; !seen {
			lf.Set(name, entry)
		}
	}

	return lf, nil
}

// Save serializes l to path atomically: write to a sibling temp file, then
// rename over the destination, matching the design's "lock file rewritten
// atomically (temp + rename)" guarantee.
func Save(l *LockFile, path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "schema_version = %q\n", SchemaVersion)

	for _, name := range l.order {
		entry := l.entries[name]
		fmt.Fprintf(&b, "\n[tools.%s]\n", tomlKey(name))
		fmt.Fprintf(&b, "version = %q\n", entry.Version)
		if entry.Source != "" {
			fmt.Fprintf(&b, "source = %q\n", entry.Source)
		}
		fmt.Fprintf(&b, "resolved_from = %q\n", entry.ResolvedFrom)
		if entry.Ecosystem != "" {
			fmt.Fprintf(&b, "ecosystem = %q\n", entry.Ecosystem)
		}
		if len(entry.Dependencies) > 0 {
			quoted := make([]string, len(entry.Dependencies))
			for i, d := range entry.Dependencies {
				quoted[i] = fmt.Sprintf("%q", d)
			}
			fmt.Fprintf(&b, "dependencies = [%s]\n", strings.Join(quoted, ", "))
		}
		if len(entry.Metadata) > 0 {
			fmt.Fprintf(&b, "\n[tools.%s.metadata]\n", tomlKey(name))
			keys := make([]string, 0, len(entry.Metadata))
			for k := range entry.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "%s = %q\n", tomlKey(k), entry.Metadata[k])
			}
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating lock file directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".lockfile-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp lock file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp lock file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("publishing lock file %s: %w", path, err)
	}
	return nil
}

// tomlKey quotes a bare key if it contains characters TOML's unquoted key
// grammar disallows (anything outside [A-Za-z0-9_-]).
func tomlKey(key string) string {
	for _, r := range key {
		if !(r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Sprintf("%q", key)
		}
	}
	return key
}
