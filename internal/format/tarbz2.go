package format

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"os"
)

// tarBz2Handler uses the standard library's compress/bzip2, a read-only
// decompressor — justified as a standard-library exception in DESIGN.md
// since no pack example vendors a third-party bzip2 compressor/decompressor
// and vx only ever needs to read, never write, .tar.bz2 archives.
type tarBz2Handler struct{}

func (tarBz2Handler) Name() string { return "tar.bz2" }

func (tarBz2Handler) CanHandle(path string) bool {
	return hasAnySuffix(path, ".tar.bz2", ".tbz2")
}

func (tarBz2Handler) Extract(archivePath, destDir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	return extractTarStream(tar.NewReader(bzip2.NewReader(f)), destDir)
}
