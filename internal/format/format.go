// Package format implements the archive FormatHandler abstraction from
// the design, generalizing the predecessor's pkg/extract (a single function
// hard-coded to tar.gz/zip via commons/files.Untar/Unzip) into one handler
// per archive kind, probed in the declared order
// [zip, tar(.gz|.xz|.bz2|.zst), 7z, msi, pkg, binary].
package format

import (
	"strings"

	"github.com/flanksource/vx/internal/vxerrors"
)

// Handler extracts one archive kind into a destination directory.
type Handler interface {
	// Name identifies the handler for logging and for the provider manifest's
	// optional explicit format override.
	Name() string
	// CanHandle reports whether path's suffix matches this handler.
	CanHandle(path string) bool
	// Extract unpacks archivePath into destDir, returning the paths of
	// every file it wrote (relative to destDir).
	Extract(archivePath, destDir string) ([]string, error)
}

// handlers is the declared probe order Order matters:
// the first handler whose CanHandle matches is used.
var handlers = []Handler{
	zipHandler{},
	tarGzHandler{},
	tarXzHandler{},
	tarBz2Handler{},
	tarZstHandler{},
	sevenZipHandler{},
	msiHandler{},
	pkgHandler{},
	binaryHandler{},
}

// Detect returns the Handler that claims path, per the declared probe order.
// binaryHandler always matches (it is the terminal fallback), so Detect
// never returns a false result.
func Detect(path string) Handler {
	for _, h := range handlers {
		if h.CanHandle(path) {
			return h
		}
	}
	return binaryHandler{}
}

// Extract unpacks archivePath into destDir using the handler Detect selects.
func Extract(archivePath, destDir string) ([]string, error) {
	h := Detect(archivePath)
	files, err := h.Extract(archivePath, destDir)
	if err != nil {
		return nil, vxerrors.ExtractionFailed(archivePath, err.Error(), err)
	}
	return files, nil
}

func hasAnySuffix(path string, suffixes ...string) bool {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}
