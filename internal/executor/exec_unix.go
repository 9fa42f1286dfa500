//go:build !windows

package executor

import (
	"context"
	"os"
	"syscall"
)

// execProcess replaces the current process image with executable, per
// the design step 6: "the process replaces the current process on Unix".
// ctx is accepted for signature symmetry with the Windows build but isn't
// consulted here — once syscall.Exec succeeds there is no longer a process
// left to cancel.
func execProcess(ctx context.Context, executable string, args []string, env []string, workingDir string) (int, error) {
	if workingDir != "" {
		if err := os.Chdir(workingDir); err != nil {
			return 1, err
		}
	}
	argv := append([]string{executable}, args...)
	if err := syscall.Exec(executable, argv, env); err != nil {
		return 1, err
	}
	return 0, nil // unreachable on success
}
