package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/flanksource/vx/internal/executor"
	"github.com/spf13/cobra"
)

// splitToolSpec splits "tool@constraint" into its parts; a bare "tool" means
// "any constraint" (the resolver maps that onto "latest").
func splitToolSpec(spec string) (tool, constraint string) {
	tool, constraint, found := strings.Cut(spec, "@")
	if !found {
		return spec, ""
	}
	return tool, constraint
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run TOOL[@VERSION] [ARGS...]",
		Short: "Resolve, install if needed, and run a tool",
		Long: `run resolves TOOL against the provider registry and any lock file entry,
installs it and its dependencies if they are missing, refreshes shims, and
execs the resolved binary with ARGS.

Examples:
  vx run node script.js
  vx run node@20 --version
  vx run yarn install`,
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE:               runRun,
	}
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	// DisableFlagParsing means vx's own persistent flags never reach here
	// ahead of the tool name; a project running `vx run node -v` must have
	// "-v" forwarded to node, not interpreted as vx's own --verbose.
	tool, constraint := splitToolSpec(args[0])

	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	req := executor.Request{
		Tool:            tool,
		Constraint:      constraint,
		Args:            args[1:],
		UseSystemPath:   flags.useSystemPath,
		SkipAutoInstall: flags.skipAutoInstall,
		Force:           flags.force,
		DryRun:          flags.dryRun,
	}

	if flags.dryRun {
		plan, err := env.exec.Prepare(context.Background(), req)
		if err != nil {
			return err
		}
		printPlan(plan)
		return nil
	}

	code, err := env.exec.Run(context.Background(), req)
	if err != nil {
		return err
	}
	if code != 0 {
		cmd.SilenceErrors = true
		return &exitError{code: code}
	}
	return nil
}

// exitError carries a nonzero child exit code out of RunE without printing
// anything extra — main() only needs the code, the child already wrote its
// own output.
type exitError struct{ code int }

func (e *exitError) Error() string { return "" }

func printPlan(p *executor.Plan) {
	if p.Resolved == nil {
		fmt.Printf("%s -> %s (host PATH)\n", p.Target.Tool, p.Target.Executable)
		return
	}
	for _, rt := range p.Resolved.Order {
		status := "cached"
		if rt.NeedsInstall {
			status = "would install"
		}
		if rt.FromHostPath {
			status = "host PATH"
		}
		fmt.Printf("%s@%s -> %s (%s)\n", rt.Tool, rt.Version, rt.Executable, status)
	}
}
