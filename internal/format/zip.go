package format

import (
	"fmt"

	"github.com/flanksource/commons/files"
)

type zipHandler struct{}

func (zipHandler) Name() string            { return "zip" }
func (zipHandler) CanHandle(path string) bool { return hasAnySuffix(path, ".zip") }

func (zipHandler) Extract(archivePath, destDir string) ([]string, error) {
	if err := files.Unzip(archivePath, destDir); err != nil {
		return nil, fmt.Errorf("unzipping %s: %w", archivePath, err)
	}
	return listFiles(destDir)
}
