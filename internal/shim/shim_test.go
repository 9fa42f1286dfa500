package shim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flanksource/vx/internal/vxpath"
)

func testTarget(t *testing.T, dir, tool, exe string) Target {
	t.Helper()
	path := filepath.Join(dir, exe)
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatalf("writing fake target: %v", err)
	}
	return Target{Tool: tool, Executable: exe, Path: path}
}

func TestCreateWritesExecutableShim(t *testing.T) {
	root := t.TempDir()
	paths := vxpath.New(root)
	mgr := New(paths)

	target := testTarget(t, t.TempDir(), "node", "node")
	if err := mgr.Create(target); err != nil {
		t.Fatalf("Create: %v", err)
	}

	shimPath := filepath.Join(paths.ShimDir(), "node")
	info, err := os.Stat(shimPath)
	if err != nil {
		t.Fatalf("stat shim: %v", err)
	}
	if info.Mode()&0o111 == 0 {
		t.Error("expected shim to be executable")
	}

	content, err := os.ReadFile(shimPath)
	if err != nil {
		t.Fatalf("reading shim: %v", err)
	}
	if !strings.Contains(string(content), target.Path) {
		t.Errorf("shim body %q does not reference target %q", content, target.Path)
	}
}

func TestCreateFailsWhenTargetMissing(t *testing.T) {
	paths := vxpath.New(t.TempDir())
	mgr := New(paths)

	err := mgr.Create(Target{Tool: "ghost", Executable: "ghost", Path: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("expected an error for a missing target")
	}
}

func TestSwitchRewritesExistingShim(t *testing.T) {
	paths := vxpath.New(t.TempDir())
	mgr := New(paths)

	toolDir := t.TempDir()
	v1 := testTarget(t, toolDir, "node", "node")
	if err := mgr.Create(v1); err != nil {
		t.Fatalf("Create: %v", err)
	}

	v2Dir := t.TempDir()
	v2Path := filepath.Join(v2Dir, "node")
	if err := os.WriteFile(v2Path, []byte("#!/bin/sh\necho v2\n"), 0o755); err != nil {
		t.Fatalf("writing v2 target: %v", err)
	}
	v2 := Target{Tool: "node", Executable: "node", Path: v2Path}
	if err := mgr.Switch(v2); err != nil {
		t.Fatalf("Switch: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(paths.ShimDir(), "node"))
	if err != nil {
		t.Fatalf("reading shim: %v", err)
	}
	if !strings.Contains(string(content), v2Path) {
		t.Errorf("expected shim to point at v2 path %q, got %q", v2Path, content)
	}
}

func TestRemoveDeletesShim(t *testing.T) {
	paths := vxpath.New(t.TempDir())
	mgr := New(paths)

	target := testTarget(t, t.TempDir(), "node", "node")
	if err := mgr.Create(target); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mgr.Remove("node"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(paths.ShimDir(), "node")); !os.IsNotExist(err) {
		t.Errorf("expected shim to be gone, stat err = %v", err)
	}
}

func TestRemoveNonexistentShimIsNotAnError(t *testing.T) {
	paths := vxpath.New(t.TempDir())
	mgr := New(paths)
	if err := mgr.Remove("never-existed"); err != nil {
		t.Errorf("expected no error removing a nonexistent shim, got %v", err)
	}
}

func TestSyncCreatesMissingAndDeletesStale(t *testing.T) {
	paths := vxpath.New(t.TempDir())
	mgr := New(paths)

	stale := testTarget(t, t.TempDir(), "old-tool", "old-tool")
	if err := mgr.Create(stale); err != nil {
		t.Fatalf("Create stale: %v", err)
	}

	wanted := testTarget(t, t.TempDir(), "node", "node")
	if err := mgr.Sync([]Target{wanted}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if _, err := os.Stat(filepath.Join(paths.ShimDir(), "node")); err != nil {
		t.Errorf("expected node shim to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(paths.ShimDir(), "old-tool")); !os.IsNotExist(err) {
		t.Errorf("expected stale shim to be removed, stat err = %v", err)
	}
}
