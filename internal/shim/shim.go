// Package shim implements the wrapper-file layer: a shim
// at <shim_dir>/<exe_name> that forwards invocation to the on-disk binary
// currently selected for a tool. Grounded on the predecessor's
// pkg/installer.createWrapperScript (a Go-template wrapper body rendered
// with {{.appDir}}/{{.binDir}}/{{.name}}/{{.version}} and written with
// os.WriteFile+chmod) — generalized here from "one fixed body per package"
// to "one fixed body per OS" (vx's wrapper only ever needs to forward argv
// to a resolved path, it doesn't need the predecessor's per-package templating)
// and from a direct write to a write-temp-then-rename, matching the atomic
// update the design requires for switch().
package shim

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/vxerrors"
	"github.com/flanksource/vx/internal/vxpath"
)

// Target names one resolved executable a shim should forward to.
type Target struct {
	Tool       string
	Executable string // bare exe name, e.g. "node"
	Path       string // absolute on-disk path the shim execs
}

// Manager creates, switches, and removes shims under one shim directory.
type Manager struct {
	paths *vxpath.Paths
}

// New builds a Manager rooted at paths.
func New(paths *vxpath.Paths) *Manager {
	return &Manager{paths: paths}
}

func (m *Manager) shimPath(executable string) string {
	name := executable
	if platform.Current().IsWindows() {
		name = platform.ExeName(executable, ".cmd")
	}
	return filepath.Join(m.paths.ShimDir(), name)
}

func body(targetPath string) []byte {
	if platform.Current().IsWindows() {
		return []byte(fmt.Sprintf("@echo off\r\n\"%s\" %%*\r\n", targetPath))
	}
	return []byte(fmt.Sprintf("#!/bin/sh\nexec \"%s\" \"$@\"\n", targetPath))
}

// Create writes (or overwrites) the shim for t, atomically: a sibling temp
// file is written first and renamed into place, so a concurrent exec of the
// shim never observes a partially written body.
func (m *Manager) Create(t Target) error {
	if _, err := os.Stat(t.Path); err != nil {
		return vxerrors.ExecutableNotFound(t.Tool, "", t.Path)
	}
	dest := m.shimPath(t.Executable)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return vxerrors.IoError(dest, err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, body(t.Path), 0o755); err != nil {
		return vxerrors.IoError(tmp, err)
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		os.Remove(tmp)
		return vxerrors.IoError(tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return vxerrors.IoError(dest, err)
	}
	return nil
}

// Switch repoints an existing (or not-yet-existing) shim at a newly resolved
// version, validating the new target exists before rewriting anything.
func (m *Manager) Switch(t Target) error {
	return m.Create(t)
}

// Remove deletes the shim for executable, if present. Removing a
// nonexistent shim is not an error.
func (m *Manager) Remove(executable string) error {
	err := os.Remove(m.shimPath(executable))
	if err != nil && !os.IsNotExist(err) {
		return vxerrors.IoError(m.shimPath(executable), err)
	}
	return nil
}

// Sync diffs want (the full intended set of shims) against what's currently
// on disk in the shim directory, creating missing shims and deleting stale
// ones that no longer correspond to any wanted executable.
func (m *Manager) Sync(want []Target) error {
	wanted := make(map[string]Target, len(want))
	for _, t := range want {
		wanted[m.shimPath(t.Executable)] = t
	}

	entries, err := os.ReadDir(m.paths.ShimDir())
	if err != nil && !os.IsNotExist(err) {
		return vxerrors.IoError(m.paths.ShimDir(), err)
	}
	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		existing[filepath.Join(m.paths.ShimDir(), e.Name())] = true
	}

	for path, t := range wanted {
		if err := m.Create(t); err != nil {
			return err
		}
		delete(existing, path)
	}
	for stale := range existing {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return vxerrors.IoError(stale, err)
		}
	}
	return nil
}
