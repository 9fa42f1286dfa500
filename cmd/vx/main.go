// Command vx is a per-project polyglot runtime manager: it resolves a tool
// and version against a provider registry and an optional lock file,
// installs whatever is missing into a per-version store, and execs the
// resolved binary through a shim layer. See internal/executor for the
// orchestration this command wraps.
package main

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/vx/internal/vxerrors"
)

// version/commit/date are set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCommand(versionInfo{Version: version, Commit: commit, Date: date})
	if err := rootCmd.Execute(); err != nil {
		if diag, ok := err.(interface{ Diagnostic() string }); ok {
			fmt.Fprint(os.Stderr, diag.Diagnostic())
		} else {
			logger.Errorf("%v", err)
		}
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return vxerrors.ExitCode(vxerrors.KindOf(err))
}
