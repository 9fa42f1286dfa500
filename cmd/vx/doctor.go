package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// doctorIssue is one finding from a doctor scan (kind + name + path). vx has
// no separate state file to cross-check against the filesystem, so every
// issue here is derived directly from the store/lock/shim layout on disk.
type doctorIssue struct {
	Kind string
	Name string
	Path string
}

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Scan the store, lock file, and shim directory for integrity problems",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	var issues []doctorIssue
	issues = append(issues, checkLockConsistency(env)...)
	issues = append(issues, checkShimTargets(env)...)
	issues = append(issues, checkHalfInstalledVersions(env)...)

	if len(issues) == 0 {
		fmt.Println("no issues found")
		return nil
	}
	for _, issue := range issues {
		fmt.Printf("[%s] %s: %s\n", issue.Kind, issue.Name, issue.Path)
	}
	return fmt.Errorf("%d issue(s) found", len(issues))
}

func checkLockConsistency(env *environment) []doctorIssue {
	if err := env.lock.Validate(); err != nil {
		return []doctorIssue{{Kind: "lock_file_inconsistent", Name: lockFileName, Path: err.Error()}}
	}
	return nil
}

// checkShimTargets flags shims whose exec target no longer exists, the
// broken_symlink case from terassyi-tomei's integrity scan adapted to vx's
// shim-body-embeds-the-path design (there is no symlink to dereference, so
// the body is read and its embedded path is stat'd instead).
func checkShimTargets(env *environment) []doctorIssue {
	var issues []doctorIssue
	entries, err := os.ReadDir(env.paths.ShimDir())
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		shimPath := filepath.Join(env.paths.ShimDir(), e.Name())
		target := extractShimTarget(shimPath)
		if target == "" {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			issues = append(issues, doctorIssue{Kind: "broken_shim", Name: e.Name(), Path: target})
		}
	}
	return issues
}

// extractShimTarget pulls the quoted exec path out of a shim body. Returns
// "" if the file doesn't look like a vx shim (e.g. it's some other file a
// user dropped into the shim directory).
func extractShimTarget(shimPath string) string {
	data, err := os.ReadFile(shimPath)
	if err != nil {
		return ""
	}
	body := string(data)
	first := strings.IndexByte(body, '"')
	if first < 0 {
		return ""
	}
	second := strings.IndexByte(body[first+1:], '"')
	if second < 0 {
		return ""
	}
	return body[first+1 : first+1+second]
}

func checkHalfInstalledVersions(env *environment) []doctorIssue {
	var issues []doctorIssue
	tools, err := env.paths.ListInstalledTools()
	if err != nil {
		return nil
	}
	for _, name := range tools {
		spec, ok := env.registry.Resolve(name)
		if !ok {
			continue
		}
		entries, err := os.ReadDir(env.paths.ToolDir(name))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || e.Name() == "current" || strings.Contains(e.Name(), ".staging-") {
				continue
			}
			if !env.paths.IsInstalled(name, e.Name(), spec.Executable) {
				issues = append(issues, doctorIssue{
					Kind: "incomplete_install",
					Name: name + "@" + e.Name(),
					Path: env.paths.ToolVersionDir(name, e.Name()),
				})
			}
		}
	}
	return issues
}
