package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/vx/internal/config"
	"github.com/flanksource/vx/internal/executor"
	"github.com/flanksource/vx/internal/lockfile"
	"github.com/flanksource/vx/internal/manifest"
	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/versionsource"
	"github.com/flanksource/vx/internal/vxpath"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isInteractive reports whether stdout is a terminal, so commands can skip
// progress chatter when their output is piped or redirected.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// globalFlags holds the persistent flags every subcommand shares: store
// location, platform overrides, and resolution knobs.
type globalFlags struct {
	vxHome          string
	osOverride      string
	archOverride    string
	force           bool
	dryRun          bool
	skipAutoInstall bool
	useSystemPath   bool
	verbose         bool
	projectManifest string
}

var flags globalFlags

type versionInfo struct {
	Version string
	Commit  string
	Date    string
}

// environment bundles the objects every subcommand needs. It's built fresh
// per invocation and threaded through command RunE closures rather than
// held as package state.
type environment struct {
	paths    *vxpath.Paths
	registry *manifest.Registry
	versions *versionsource.Registry
	lock     *lockfile.LockFile
	project  *config.Config
	exec     *executor.Executor
}

const lockFileName = "vx-lock.toml"

func buildEnvironment() (*environment, error) {
	if flags.verbose {
		logger.StandardLogger().SetMinLogLevel(logger.Debug)
	}

	platform.SetOverrides(flags.osOverride, flags.archOverride)

	paths := vxpath.New(flags.vxHome)

	registry, err := manifest.Load(paths.ConfigDir())
	if err != nil {
		return nil, fmt.Errorf("loading provider registry: %w", err)
	}

	versions := versionsource.NewRegistry(nil)

	lock, err := lockfile.Load(lockFileName)
	if err != nil {
		return nil, fmt.Errorf("loading lock file: %w", err)
	}

	project, err := config.Load(flags.projectManifest)
	if err != nil {
		project = &config.Config{Tools: map[string]config.ToolRequirement{}, Env: map[string]string{}}
	}

	exec := executor.New(paths, registry, versions, lock)

	return &environment{
		paths:    paths,
		registry: registry,
		versions: versions,
		lock:     lock,
		project:  project,
		exec:     exec,
	}, nil
}

func newRootCommand(info versionInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "vx",
		Short:         "A per-project polyglot runtime manager",
		Long:          `vx resolves, installs, and runs the Node/Python/Go/Java/Rust toolchains a project declares, without touching the host's own installations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s, built %s, %s/%s)", info.Version, info.Commit, info.Date, runtime.GOOS, runtime.GOARCH),
	}

	root.PersistentFlags().StringVar(&flags.vxHome, "vx-home", "", "Root directory for the vx store (default: $VX_HOME or ~/.vx)")
	root.PersistentFlags().StringVar(&flags.osOverride, "os", "", "Target OS override (linux, darwin, windows)")
	root.PersistentFlags().StringVar(&flags.archOverride, "arch", "", "Target architecture override (x64, arm64, ...)")
	root.PersistentFlags().BoolVar(&flags.force, "force", false, "Reinstall even if the resolved version is already present")
	root.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Resolve and print the install plan without installing or running anything")
	root.PersistentFlags().BoolVar(&flags.skipAutoInstall, "skip-auto-install", false, "Fail instead of installing missing tools")
	root.PersistentFlags().BoolVar(&flags.useSystemPath, "system-path", false, "Use the host PATH instead of resolving a managed version")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&flags.projectManifest, "manifest", "m", "", "Path to the project manifest (default: vx.toml)")

	root.AddCommand(
		newRunCommand(),
		newInstallCommand(),
		newListCommand(),
		newLockCommand(),
		newWhichCommand(),
		newShimCommand(),
		newDoctorCommand(),
		newInfoCommand(),
		newVersionCommand(info),
	)

	return root
}
