package format

import "testing"

func TestDetectProbeOrder(t *testing.T) {
	cases := map[string]string{
		"node-20.0.0.zip":      "zip",
		"node-20.0.0.tar.gz":   "tar.gz",
		"node-20.0.0.tgz":      "tar.gz",
		"rust-1.0.tar.xz":      "tar.xz",
		"tool.tar.bz2":         "tar.bz2",
		"tool.tar.zst":         "tar.zst",
		"installer.msi":        "msi",
		"installer.pkg":        "pkg",
		"archive.7z":           "7z",
		"plain-binary-no-ext":  "binary",
	}
	for path, want := range cases {
		if got := Detect(path).Name(); got != want {
			t.Errorf("Detect(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestListFilesEmptyDir(t *testing.T) {
	// listFiles is the walk every handler uses to report extracted files; an
	// empty destination yields no entries.
	dir := t.TempDir()
	files, err := listFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files in empty dir, got %v", files)
	}
}
