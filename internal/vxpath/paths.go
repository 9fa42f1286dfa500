// Package vxpath computes the deterministic on-disk layout rooted at the vx
// home directory: the store, the shim directory, and the download cache.
package vxpath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/vx/internal/platform"
)

// Paths is a pure accessor over a root directory. Every accessor that returns
// a directory materializes it (creates missing parents) on first access.
type Paths struct {
	root string
}

// New creates a Paths rooted at root. If root is empty, it defaults to
// $VX_HOME, or "~/.vx" if that is unset.
func New(root string) *Paths {
	if root == "" {
		root = DefaultRoot()
	}
	return &Paths{root: root}
}

// DefaultRoot returns $VX_HOME or "~/.vx".
func DefaultRoot() string {
	if home := os.Getenv("VX_HOME"); home != "" {
		return home
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".vx")
}

// Root returns the root directory.
func (p *Paths) Root() string { return p.root }

func (p *Paths) ensure(dir string) string {
	_ = os.MkdirAll(longPath(dir), 0o755)
	return dir
}

// StoreDir is "<root>/store", the tree of per-tool, per-version installations.
func (p *Paths) StoreDir() string {
	return p.ensure(filepath.Join(p.root, "store"))
}

// CacheDir is "<root>/cache", where downloaded archives are content-addressed.
func (p *Paths) CacheDir() string {
	return p.ensure(filepath.Join(p.root, "cache"))
}

// ShimDir is "<root>/bin", where shim wrappers live.
func (p *Paths) ShimDir() string {
	return p.ensure(filepath.Join(p.root, "bin"))
}

// ConfigDir is "<root>/config", for user-edited provider overrides.
func (p *Paths) ConfigDir() string {
	return p.ensure(filepath.Join(p.root, "config"))
}

// LocksDir is "<root>/cache/locks". No install step takes a lock file there;
// a --force reinstall is not serialized against concurrent installers.
func (p *Paths) LocksDir() string {
	return p.ensure(filepath.Join(p.CacheDir(), "locks"))
}

// ToolDir is "<store>/<name>".
func (p *Paths) ToolDir(name string) string {
	return p.ensure(filepath.Join(p.StoreDir(), name))
}

// ToolVersionDir is "<store>/<name>/<version>".
func (p *Paths) ToolVersionDir(name, version string) string {
	return p.ensure(filepath.Join(p.ToolDir(name), version))
}

// ToolCurrentDir is "<store>/<name>/current". No package creates it;
// ListToolVersions skips an entry of that name.
func (p *Paths) ToolCurrentDir(name string) string {
	return filepath.Join(p.ToolDir(name), "current")
}

// ToolExecutablePath joins the tool's version directory with its
// platform-adjusted executable name.
func (p *Paths) ToolExecutablePath(name, version, executable string) string {
	return filepath.Join(p.ToolVersionDir(name, version), platform.ExeName(executable))
}

// IsInstalled reports whether the on-disk artifact for (name, version) looks
// complete: its executable path exists and is a regular file (and, on Unix,
// executable).
func (p *Paths) IsInstalled(name, version, executable string) bool {
	exe := p.ToolExecutablePath(name, version, executable)
	info, err := os.Stat(longPath(exe))
	if err != nil || info.IsDir() {
		return false
	}
	if platform.Current().IsWindows() {
		return true
	}
	return info.Mode()&0o111 != 0
}

// ListInstalledTools lists store subdirectories that contain at least one
// complete version installation.
func (p *Paths) ListInstalledTools() ([]string, error) {
	entries, err := os.ReadDir(longPath(p.StoreDir()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var tools []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		versions, _ := p.ListToolVersions(e.Name(), "")
		if len(versions) > 0 {
			tools = append(tools, e.Name())
		}
	}
	return tools, nil
}

// isStagingDir reports whether name is a leftover install staging directory
// (installer.stagingPath names these "<version>.staging-<hex>"). A plain
// filepath.Ext check doesn't work here: the hex suffix after the final dash
// means Ext returns ".staging-<hex>", never the bare ".staging" it's compared
// against.
func isStagingDir(name string) bool {
	return strings.Contains(name, ".staging-")
}

// ListToolVersions lists version directories for name that contain a complete
// installation (half-installed directories are skipped). executable is the
// bare executable name used to check completeness; pass "" to skip the check
// and just enumerate version directories.
func (p *Paths) ListToolVersions(name, executable string) ([]string, error) {
	entries, err := os.ReadDir(longPath(p.ToolDir(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "current" || isStagingDir(e.Name()) {
			continue
		}
		if executable == "" || p.IsInstalled(name, e.Name(), executable) {
			versions = append(versions, e.Name())
		}
	}
	return versions, nil
}
