package main

import (
	"context"
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/vx/internal/executor"
	"github.com/flanksource/vx/internal/resolver"
	"github.com/spf13/cobra"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install [TOOL[@VERSION]...]",
		Short: "Install one or more tools, or everything the project manifest declares",
		Long: `With no arguments, install reads vx.toml's [tools] table and installs every
declared tool at its declared constraint. With arguments, it installs just
those tools without touching the project manifest.

Examples:
  vx install                  # install everything in vx.toml
  vx install node@20 yarn     # install specific tools ad hoc`,
		RunE: runInstall,
	}
}

func runInstall(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	requests := make([]resolver.ToolRequest, 0, len(args))
	if len(args) == 0 {
		for name, req := range env.project.Tools {
			requests = append(requests, resolver.ToolRequest{Tool: name, Constraint: req.Version})
		}
		if len(requests) == 0 {
			return fmt.Errorf("no tools to install: %s declares none and none were given on the command line", manifestDisplayName())
		}
	} else {
		for _, spec := range args {
			tool, constraint := splitToolSpec(spec)
			requests = append(requests, resolver.ToolRequest{Tool: tool, Constraint: constraint})
		}
	}

	interactive := isInteractive()
	ctx := context.Background()
	for _, req := range requests {
		if interactive {
			fmt.Printf("resolving %s...\n", req.Tool)
		}
		logger.Debugf("resolving %s", req.Tool)
		plan, err := env.exec.Prepare(ctx, executor.Request{
			Tool:       req.Tool,
			Constraint: req.Constraint,
			Force:      flags.force,
			DryRun:     flags.dryRun,
		})
		if err != nil {
			return fmt.Errorf("installing %s: %w", req.Tool, err)
		}
		logger.Infof("%s ready at %s", req.Tool, plan.Target.Executable)
	}

	return nil
}

func manifestDisplayName() string {
	if flags.projectManifest != "" {
		return flags.projectManifest
	}
	return "vx.toml"
}
