package format

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// tarXzHandler has no predecessor equivalent — the predecessor only handles
// gz/zip. Added per the domain-stack wiring table to give ulikunitz/xz a
// concrete home: providers whose upstream only ships .tar.xz (several Rust
// toolchain distributions do) route through here.
type tarXzHandler struct{}

func (tarXzHandler) Name() string { return "tar.xz" }

func (tarXzHandler) CanHandle(path string) bool {
	return hasAnySuffix(path, ".tar.xz", ".txz")
}

func (tarXzHandler) Extract(archivePath, destDir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading xz stream: %w", err)
	}
	return extractTarStream(tar.NewReader(xr), destDir)
}

// extractTarStream is shared by every tar-based handler (xz, bz2) that isn't
// already covered by commons/files.Untar's gzip-only path.
func extractTarStream(tr *tar.Reader, destDir string) ([]string, error) {
	var written []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}

		target := filepath.Join(destDir, hdr.Name)
		if !withinDir(destDir, target) {
			return nil, fmt.Errorf("tar entry %q escapes destination directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return nil, err
			}
			out.Close()
			written = append(written, hdr.Name)
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, err
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return nil, err
			}
		}
	}
	return written, nil
}

func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepathHasDotDotPrefix(rel)
}

func filepathHasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.' &&
		(len(rel) == 2 || os.IsPathSeparator(rel[2]))
}
