package executor

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flanksource/vx/internal/manifest"
	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/versionsource"
	"github.com/flanksource/vx/internal/vxpath"
)

type fakeSource struct {
	kind     string
	versions []string
}

func (f *fakeSource) Name() string { return f.kind }
func (f *fakeSource) Discover(ctx context.Context, spec manifest.VersionSource, limit int) ([]string, error) {
	return f.versions, nil
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func testRegistryWithTool(t *testing.T, downloadURL string) *manifest.Registry {
	t.Helper()
	dir := t.TempDir()
	content := "provider = \"test\"\n\n" +
		"[[runtime]]\n" +
		"name = \"greet\"\n" +
		"executable = \"greet\"\n" +
		"ecosystem = \"generic\"\n" +
		"url_template = \"" + downloadURL + "\"\n\n" +
		"[runtime.layout]\n" +
		"executable_paths = [\"bin/greet\"]\n" +
		"executable_mode = 493\n\n" + // 0o755
		"[runtime.version_source]\n" +
		"kind = \"fake-greet\"\n"
	if err := os.WriteFile(filepath.Join(dir, "test.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing test manifest: %v", err)
	}
	reg, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("manifest.Load: %v", err)
	}
	return reg
}

func TestExecutorPrepareUseSystemPathSkipsResolution(t *testing.T) {
	registry := testRegistryWithTool(t, "http://unused")
	vreg := versionsource.NewRegistry(nil)
	exec := New(vxpath.New(t.TempDir()), registry, vreg, nil)

	fakeBin := filepath.Join(t.TempDir(), "echo-tool")
	if err := os.WriteFile(fakeBin, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatalf("writing fake bin: %v", err)
	}
	t.Setenv("PATH", filepath.Dir(fakeBin)+string(os.PathListSeparator)+os.Getenv("PATH"))

	plan, err := exec.Prepare(context.Background(), Request{Tool: "echo-tool", UseSystemPath: true, Args: []string{"a"}})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !plan.Target.FromHostPath {
		t.Error("expected FromHostPath true")
	}
	if plan.Target.Executable != fakeBin {
		t.Errorf("expected %s, got %s", fakeBin, plan.Target.Executable)
	}
}

func TestExecutorPrepareDryRunSkipsInstallAndShim(t *testing.T) {
	registry := testRegistryWithTool(t, "http://unused")
	vreg := versionsource.NewRegistry(nil)
	vreg.Register(&fakeSource{kind: "fake-greet", versions: []string{"1.0.0"}})
	paths := vxpath.New(t.TempDir())
	exec := New(paths, registry, vreg, nil)

	plan, err := exec.Prepare(context.Background(), Request{Tool: "greet", DryRun: true})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !plan.Target.NeedsInstall {
		t.Error("expected NeedsInstall true under DryRun (nothing should have been installed)")
	}
	if _, err := os.Stat(filepath.Join(paths.ShimDir(), platform.ExeName("greet"))); !os.IsNotExist(err) {
		t.Errorf("expected no shim to be created under DryRun, stat err = %v", err)
	}
}

func TestExecutorPrepareInstallsAndShimsRealTool(t *testing.T) {
	payload := buildZip(t, map[string]string{"bin/greet": "#!/bin/sh\necho hi\n"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	registry := testRegistryWithTool(t, srv.URL+"/greet.zip")
	vreg := versionsource.NewRegistry(nil)
	vreg.Register(&fakeSource{kind: "fake-greet", versions: []string{"1.0.0"}})
	paths := vxpath.New(t.TempDir())
	exec := New(paths, registry, vreg, nil)

	plan, err := exec.Prepare(context.Background(), Request{Tool: "greet"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !plan.Target.NeedsInstall {
		t.Error("expected NeedsInstall to keep its pre-install value (true) on the Plan entry")
	}
	if _, err := os.Stat(plan.Target.Executable); err != nil {
		t.Errorf("expected resolved executable to exist on disk: %v", err)
	}

	shimPath := filepath.Join(paths.ShimDir(), platform.ExeName("greet"))
	if _, err := os.Stat(shimPath); err != nil {
		t.Fatalf("expected shim to be created: %v", err)
	}
	body, err := os.ReadFile(shimPath)
	if err != nil {
		t.Fatalf("reading shim: %v", err)
	}
	if !strings.Contains(string(body), plan.Target.Executable) {
		t.Errorf("shim body does not reference resolved executable: %s", body)
	}

	pathVar := "PATH"
	if platform.Current().IsWindows() {
		pathVar = "Path"
	}
	foundPath := false
	for _, kv := range plan.Env {
		if strings.HasPrefix(kv, pathVar+"=") && strings.Contains(kv, filepath.Dir(plan.Target.Executable)) {
			foundPath = true
		}
	}
	if !foundPath {
		t.Errorf("expected composed env PATH to include %s", filepath.Dir(plan.Target.Executable))
	}
}
