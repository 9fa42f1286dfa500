package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/vx/internal/manifest"
	"github.com/flanksource/vx/internal/vxpath"
)

// buildZip produces an in-memory zip archive with the given name -> content
// entries, for exercising the extract+layout steps against a real archive
// rather than the bare-binary fallback.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testPaths(t *testing.T) *vxpath.Paths {
	t.Helper()
	return vxpath.New(t.TempDir())
}

func binarySpec(executable string) manifest.RuntimeSpec {
	return manifest.RuntimeSpec{
		Name:       "tool",
		Executable: executable,
		Ecosystem:  manifest.EcosystemGeneric,
		Layout: manifest.ArchiveLayout{
			ExecutablePaths:    []string{executable},
			ExecutableModeBits: 0o755,
		},
	}
}

func TestInstallFetchesExtractsAndPublishes(t *testing.T) {
	body := []byte("#!/bin/sh\necho hi\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	paths := testPaths(t)
	in := New(paths)

	cfg := Config{
		Tool:        "tool",
		Version:     "1.0.0",
		Spec:        binarySpec("tool"),
		DownloadURL: srv.URL + "/tool",
	}

	result, err := in.Install(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if result.AlreadyPresent {
		t.Fatal("expected a fresh install, not AlreadyPresent")
	}
	if _, err := os.Stat(result.ExecutablePath); err != nil {
		t.Fatalf("expected executable at %s: %v", result.ExecutablePath, err)
	}

	// The staging directory must be gone and only the published version
	// directory should remain under the tool's store directory.
	entries, err := os.ReadDir(paths.ToolDir("tool"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "1.0.0" {
		t.Fatalf("expected only the published version dir, got %v", entries)
	}
}

func TestInstallShortCircuitsWhenAlreadyInstalled(t *testing.T) {
	paths := testPaths(t)
	in := New(paths)

	execPath := paths.ToolExecutablePath("tool", "1.0.0", "tool")
	if err := os.MkdirAll(filepath.Dir(execPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(execPath, []byte("already here"), 0o755); err != nil {
		t.Fatal(err)
	}

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("should not be fetched"))
	}))
	defer srv.Close()

	cfg := Config{
		Tool:        "tool",
		Version:     "1.0.0",
		Spec:        binarySpec("tool"),
		DownloadURL: srv.URL + "/tool",
	}

	result, err := in.Install(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !result.AlreadyPresent {
		t.Fatal("expected AlreadyPresent")
	}
	if hits != 0 {
		t.Fatalf("expected no download for an already-installed tool, got %d hits", hits)
	}
}

func TestInstallForceReinstallsOverExisting(t *testing.T) {
	paths := testPaths(t)
	in := New(paths)

	execPath := paths.ToolExecutablePath("tool", "1.0.0", "tool")
	if err := os.MkdirAll(filepath.Dir(execPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(execPath, []byte("stale"), 0o755); err != nil {
		t.Fatal(err)
	}

	body := []byte("fresh binary")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	cfg := Config{
		Tool:        "tool",
		Version:     "1.0.0",
		Spec:        binarySpec("tool"),
		DownloadURL: srv.URL + "/tool",
		Force:       true,
	}

	result, err := in.Install(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if result.AlreadyPresent {
		t.Fatal("expected a forced reinstall, not AlreadyPresent")
	}
	got, err := os.ReadFile(result.ExecutablePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(body) {
		t.Fatalf("expected reinstalled content %q, got %q", body, got)
	}
}

func TestInstallRunsPostInstallHook(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"tool":      "#!/bin/sh\necho hi\n",
		"extra.txt": "not needed at runtime",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	paths := testPaths(t)
	in := New(paths)

	spec := binarySpec("tool")
	spec.Layout.ExecutablePaths = []string{"tool"}
	spec.Hooks = &manifest.Hooks{
		PostInstall: []string{`rm(path(install_dir, "extra.txt"))`},
	}

	cfg := Config{
		Tool:        "tool",
		Version:     "1.0.0",
		Spec:        spec,
		DownloadURL: srv.URL + "/tool.zip",
	}

	result, err := in.Install(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(result.ExecutablePath); err != nil {
		t.Fatalf("expected executable to survive the hook: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(result.ExecutablePath), "extra.txt")); !os.IsNotExist(err) {
		t.Fatal("expected post_install hook to have removed extra.txt")
	}
}

func TestInstallAbortsWhenPreInstallHookFails(t *testing.T) {
	body := []byte("binary")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	paths := testPaths(t)
	in := New(paths)

	spec := binarySpec("tool")
	spec.Hooks = &manifest.Hooks{
		PreInstall: []string{`fail("deliberate pre_install failure")`},
	}

	cfg := Config{
		Tool:        "tool",
		Version:     "1.0.0",
		Spec:        spec,
		DownloadURL: srv.URL + "/tool",
	}

	if _, err := in.Install(context.Background(), cfg); err == nil {
		t.Fatal("expected pre_install hook failure to abort installation")
	}

	if _, err := os.Stat(paths.ToolVersionDir("tool", "1.0.0")); err == nil {
		entries, _ := os.ReadDir(paths.ToolVersionDir("tool", "1.0.0"))
		if len(entries) != 0 {
			t.Fatalf("expected nothing published after a failed install, found %v", entries)
		}
	}
}

func TestInstallFailsWhenNoExecutablePathMatches(t *testing.T) {
	body := []byte("binary")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	paths := testPaths(t)
	in := New(paths)

	spec := binarySpec("tool")
	spec.Layout.ExecutablePaths = []string{"nonexistent-binary-name"}

	cfg := Config{
		Tool:        "tool",
		Version:     "1.0.0",
		Spec:        spec,
		DownloadURL: srv.URL + "/tool",
	}

	if _, err := in.Install(context.Background(), cfg); err == nil {
		t.Fatal("expected installation to fail when no executable_paths entry matches")
	}
}

func TestInstallCleansUpStagingDirOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	paths := testPaths(t)
	in := New(paths)

	cfg := Config{
		Tool:        "tool",
		Version:     "1.0.0",
		Spec:        binarySpec("tool"),
		DownloadURL: srv.URL + "/tool",
	}

	if _, err := in.Install(context.Background(), cfg); err == nil {
		t.Fatal("expected download failure")
	}

	entries, err := os.ReadDir(paths.StoreDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		toolEntries, _ := os.ReadDir(filepath.Join(paths.StoreDir(), e.Name()))
		for _, te := range toolEntries {
			if filepath.Ext(te.Name()) != "" && te.Name() != "1.0.0" {
				t.Fatalf("expected staging directory to be cleaned up, found %s", te.Name())
			}
		}
	}
}
