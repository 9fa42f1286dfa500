package format

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/files"
)

type tarGzHandler struct{}

func (tarGzHandler) Name() string { return "tar.gz" }

func (tarGzHandler) CanHandle(path string) bool {
	return hasAnySuffix(path, ".tar.gz", ".tgz")
}

func (tarGzHandler) Extract(archivePath, destDir string) ([]string, error) {
	if err := files.Untar(archivePath, destDir); err != nil {
		return nil, fmt.Errorf("untarring %s: %w", archivePath, err)
	}
	return listFiles(destDir)
}

// listFiles walks dir and returns every regular file's path relative to dir,
// used by handlers (commons/files.Untar/Unzip) that don't themselves report
// what they wrote.
func listFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}
