// Package installer drives the per-tool installation pipeline from
// the design: stage, download, extract, apply layout, run lifecycle
// hooks, validate, atomically publish. Directly descends from the
// predecessor's pkg/installer.Installer.installTool (download -> extract ->
// post-process -> chmod -> success), restructured around an explicit
// staging-directory-plus-atomic-rename the predecessor never needed — it
// writes straight into BinDir with no staging at all.
package installer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/vx/internal/checksum"
	"github.com/flanksource/vx/internal/download"
	"github.com/flanksource/vx/internal/format"
	"github.com/flanksource/vx/internal/manifest"
	"github.com/flanksource/vx/internal/pipeline"
	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/vxerrors"
	"github.com/flanksource/vx/internal/vxpath"
)

// Config is the input to one install: what to fetch, and where it goes.
type Config struct {
	Tool        string
	Version     string
	Spec        manifest.RuntimeSpec
	DownloadURL string
	ChecksumURL string
	Checksum    string // "type:value", takes precedence over ChecksumURL
	Force       bool
}

// Result describes a completed (or already-satisfied) installation.
type Result struct {
	Tool           string
	Version        string
	ExecutablePath string
	AlreadyPresent bool
}

// Installer runs the install pipeline against one Paths-rooted store.
type Installer struct {
	paths *vxpath.Paths
}

// New builds an Installer rooted at paths.
func New(paths *vxpath.Paths) *Installer {
	return &Installer{paths: paths}
}

// Install runs the 8-step pipeline for cfg.
func (in *Installer) Install(ctx context.Context, cfg Config) (*Result, error) {
	installDir := in.paths.ToolVersionDir(cfg.Tool, cfg.Version)

	// Step 1: already-installed short-circuit.
	if !cfg.Force && in.paths.IsInstalled(cfg.Tool, cfg.Version, cfg.Spec.Executable) {
		return &Result{
			Tool:           cfg.Tool,
			Version:        cfg.Version,
			ExecutablePath: in.paths.ToolExecutablePath(cfg.Tool, cfg.Version, cfg.Spec.Executable),
			AlreadyPresent: true,
		}, nil
	}

	// Step 2: stage.
	stagingDir, err := stagingPath(installDir)
	if err != nil {
		return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "creating staging directory", err)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "creating staging directory", err)
	}
	cleanStaging := true
	defer func() {
		if cleanStaging {
			os.RemoveAll(stagingDir)
		}
	}()

	plat := platform.Current()
	data := map[string]string{
		"version": cfg.Version,
		"os":      plat.OS,
		"arch":    plat.Arch,
	}

	// Step 3: download. The staged file keeps the upstream asset's basename
	// rather than a generic name: binaryHandler's "extract" step for a bare
	// executable just copies the file under its own basename, and that
	// basename is what a provider's executable_paths glob has to match.
	downloadDest := filepath.Join(stagingDir, downloadFileName(cfg.DownloadURL))
	opts := []download.Option{download.WithCacheDir(in.paths.CacheDir())}
	if cfg.Checksum != "" {
		opts = append(opts, download.WithChecksum(cfg.Checksum))
	} else if cfg.ChecksumURL != "" {
		assetName := filepath.Base(cfg.DownloadURL)
		if sum, err := fetchChecksumForAsset(ctx, cfg.ChecksumURL, assetName); err == nil && sum != "" {
			opts = append(opts, download.WithChecksum(sum))
		}
	}
	if err := download.Get(ctx, cfg.DownloadURL, downloadDest, opts...); err != nil {
		return nil, err
	}

	// Step 4: extract and apply layout.
	extractDir := filepath.Join(stagingDir, "extract")
	handler := format.Detect(downloadDest)
	if _, err := handler.Extract(downloadDest, extractDir); err != nil {
		return nil, vxerrors.ExtractionFailed(downloadDest, err.Error(), err)
	}

	root, execPath, err := format.ApplyLayout(extractDir, cfg.Spec.Layout, data)
	if err != nil {
		return nil, vxerrors.ExecutableNotFound(cfg.Tool, cfg.Version, extractDir)
	}

	// Step 5: lifecycle hooks, bound to the resolved root (which becomes
	// install_dir once published in step 7 below).
	if cfg.Spec.Hooks != nil {
		env, err := pipeline.New(pipeline.Bindings{InstallDir: root, Version: cfg.Version, OS: plat.OS, Arch: plat.Arch})
		if err != nil {
			return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "building hook environment", err)
		}
		if err := env.Run(cfg.Spec.Hooks.PreInstall); err != nil {
			return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "pre_install hook failed", err)
		}
		if err := env.Run(cfg.Spec.Hooks.PostInstall); err != nil {
			return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "post_install hook failed", err)
		}
	}

	// Step 6: validate.
	info, err := os.Stat(execPath)
	if err != nil || info.IsDir() {
		return nil, vxerrors.ExecutableNotFound(cfg.Tool, cfg.Version, execPath)
	}
	if !plat.IsWindows() && info.Mode()&0o111 == 0 {
		return nil, vxerrors.ExecutableNotFound(cfg.Tool, cfg.Version, execPath)
	}

	// execPath is resolved relative to root before the rename below moves
	// root to installDir; ToolExecutablePath assumes a flat
	// <installDir>/<executable> layout, which is wrong for any provider
	// whose executable lives under a subdirectory (e.g. bin/node), so the
	// published path is rebuilt from execPath's position relative to root
	// instead.
	relExec, err := filepath.Rel(root, execPath)
	if err != nil {
		return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "computing executable path", err)
	}

	// Step 7: atomic publish. root (somewhere under stagingDir) is renamed
	// out to installDir; whatever remains of stagingDir (the download file,
	// any siblings root didn't consume) is then discarded. A forced
	// reinstall first removes the published directory, since publish keeps
	// an existing one.
	if cfg.Force {
		if err := os.RemoveAll(installDir); err != nil {
			return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "removing existing install directory", err)
		}
	}
	if err := publish(root, installDir); err != nil {
		return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "publishing install directory", err)
	}
	cleanStaging = false
	os.RemoveAll(stagingDir)

	// vxpath.ToolExecutablePath/IsInstalled assume the executable sits flat
	// at <installDir>/<executable>; for a layout whose executable_paths
	// match resolves to a subdirectory (bin/node, bin/go, ...), link the
	// flat name to the real location so those two callers keep working
	// without having to learn about archive layouts.
	if err := linkFlatExecutable(installDir, relExec, platform.ExeName(cfg.Spec.Executable), plat); err != nil {
		return nil, vxerrors.InstallationFailed(cfg.Tool, cfg.Version, "linking executable", err)
	}

	// Step 8: result.
	return &Result{
		Tool:           cfg.Tool,
		Version:        cfg.Version,
		ExecutablePath: filepath.Join(installDir, relExec),
	}, nil
}

// stagingPath returns installDir + ".staging-<rand>", a sibling directory
// used step 2.
func stagingPath(installDir string) (string, error) {
	suffix, err := randomHex(6)
	if err != nil {
		return "", err
	}
	return installDir + ".staging-" + suffix, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// publish renames root to installDir. On a name conflict (a concurrent
// installer won the race step 7), the loser's stage is
// simply dropped rather than erroring, since the two installers built the
// same (tool, version) artifact from the same inputs.
func publish(root, installDir string) error {
	if err := os.MkdirAll(filepath.Dir(installDir), 0o755); err != nil {
		return err
	}
	if err := os.Rename(root, installDir); err != nil {
		if _, statErr := os.Stat(installDir); statErr == nil {
			return nil
		}
		return fmt.Errorf("renaming %s -> %s: %w", root, installDir, err)
	}
	return nil
}

// linkFlatExecutable makes the executable reachable at the flat path
// vxpath.ToolExecutablePath expects, when the layout put it somewhere else.
// Uses a relative symlink on Unix (cheap, preserves the mode bits already
// validated in step 6); Windows symlinks routinely need elevated privilege,
// so there we copy the bytes instead.
func linkFlatExecutable(installDir, relExec, flatName string, plat platform.Platform) error {
	if filepath.ToSlash(relExec) == flatName {
		return nil
	}
	linkPath := filepath.Join(installDir, flatName)
	if _, err := os.Lstat(linkPath); err == nil {
		os.Remove(linkPath)
	}
	if plat.IsWindows() {
		return copyFile(filepath.Join(installDir, relExec), linkPath)
	}
	return os.Symlink(relExec, linkPath)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, info.Mode())
}

// downloadFileName returns the basename a download URL's asset should be
// staged under. Falls back to a generic name if the URL has no usable path
// component (e.g. a bare query-string-only endpoint).
func downloadFileName(url string) string {
	name := filepath.Base(url)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "download"
	}
	return name
}

// fetchChecksumForAsset downloads a goreleaser/HashiCorp-style checksums
// file and extracts the line for assetName.
func fetchChecksumForAsset(ctx context.Context, checksumURL, assetName string) (string, error) {
	content, err := checksum.FetchChecksumFile(ctx, nil, checksumURL)
	if err != nil {
		return "", err
	}
	value, hashType, err := checksum.ParseChecksumFile(content, assetName)
	if err != nil {
		return "", err
	}
	return checksum.Format(value, hashType), nil
}
