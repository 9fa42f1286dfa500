package format

import "fmt"

// tarZstHandler is a TODO hook: no default provider ships .tar.zst, so a
// zstd decoder isn't wired yet. Add github.com/klauspost/compress/zstd here
// the day a provider needs it.
type tarZstHandler struct{}

func (tarZstHandler) Name() string               { return "tar.zst" }
func (tarZstHandler) CanHandle(path string) bool { return hasAnySuffix(path, ".tar.zst", ".tzst") }
func (tarZstHandler) Extract(archivePath, destDir string) ([]string, error) {
	return nil, fmt.Errorf("tar.zst extraction not yet implemented")
}

// sevenZipHandler, msiHandler, and pkgHandler are stubs: no default provider
// ships these on the platforms vx supports, per the Non-goals carve-out in
// SPEC_FULL.md §5.
type sevenZipHandler struct{}

func (sevenZipHandler) Name() string               { return "7z" }
func (sevenZipHandler) CanHandle(path string) bool { return hasAnySuffix(path, ".7z") }
func (sevenZipHandler) Extract(archivePath, destDir string) ([]string, error) {
	return nil, fmt.Errorf("unsupported format on this platform: 7z")
}

type msiHandler struct{}

func (msiHandler) Name() string               { return "msi" }
func (msiHandler) CanHandle(path string) bool { return hasAnySuffix(path, ".msi") }
func (msiHandler) Extract(archivePath, destDir string) ([]string, error) {
	return nil, fmt.Errorf("unsupported format on this platform: msi")
}

type pkgHandler struct{}

func (pkgHandler) Name() string               { return "pkg" }
func (pkgHandler) CanHandle(path string) bool { return hasAnySuffix(path, ".pkg") }
func (pkgHandler) Extract(archivePath, destDir string) ([]string, error) {
	return nil, fmt.Errorf("unsupported format on this platform: pkg")
}
