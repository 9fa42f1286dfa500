package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/vx/internal/manifest"
)

// ApplyLayout turns a freshly extracted archive tree into the canonical
// per-version store layout: strip a leading path component, apply any
// declared renames, then search the declared executable_paths (doublestar
// glob patterns) for the first match. Generalizes the predecessor's
// findBinaryInDir "search for one binary" into "apply a declared layout,
// then search".
func ApplyLayout(extractedDir string, layout manifest.ArchiveLayout, data map[string]string) (root, execPath string, err error) {
	root = extractedDir
	if layout.StripPrefix != "" {
		prefix, err := renderTemplate(layout.StripPrefix, data)
		if err != nil {
			return "", "", fmt.Errorf("rendering strip_prefix: %w", err)
		}
		candidate := filepath.Join(extractedDir, prefix)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			root = candidate
		}
	}

	for oldPath, newPath := range layout.Rename {
		oldPath, err := renderTemplate(oldPath, data)
		if err != nil {
			return "", "", err
		}
		newPath, err := renderTemplate(newPath, data)
		if err != nil {
			return "", "", err
		}
		src := filepath.Join(root, oldPath)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(root, newPath)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return "", "", err
		}
		if err := os.Rename(src, dst); err != nil {
			return "", "", fmt.Errorf("renaming %s -> %s: %w", oldPath, newPath, err)
		}
	}

	for _, pattern := range layout.ExecutablePaths {
		rendered, err := renderTemplate(pattern, data)
		if err != nil {
			return "", "", err
		}
		matches, err := doublestar.Glob(os.DirFS(root), rendered)
		if err != nil {
			continue
		}
		for _, m := range matches {
			full := filepath.Join(root, m)
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				if layout.ExecutableModeBits != 0 {
					_ = os.Chmod(full, os.FileMode(layout.ExecutableModeBits))
				}
				return root, full, nil
			}
		}
	}

	return "", "", fmt.Errorf("no executable_paths entry matched under %s", root)
}

// renderTemplate does simple "{{.key}}" substitution without pulling in a
// full template engine for layout paths — the heavier gomplate templating is
// reserved for URL construction (internal/manifest.RenderTemplate) where CEL/gomplate
// expressions are genuinely needed.
func renderTemplate(pattern string, data map[string]string) (string, error) {
	out := pattern
	for k, v := range data {
		out = strings.ReplaceAll(out, "{{."+k+"}}", v)
	}
	return out, nil
}
