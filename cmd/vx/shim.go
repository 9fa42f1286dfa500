package main

import (
	"context"
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/vx/internal/resolver"
	"github.com/flanksource/vx/internal/shim"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newShimCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shim",
		Short: "Manage the shim directory directly",
	}
	cmd.AddCommand(newShimSyncCommand(), newShimRemoveCommand())
	return cmd
}

func newShimSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Resolve the project manifest's tools and point every shim at the resolved executable",
		RunE:  runShimSync,
	}
}

func runShimSync(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	requests := make([]resolver.ToolRequest, 0, len(env.project.Tools))
	for name, req := range env.project.Tools {
		requests = append(requests, resolver.ToolRequest{Tool: name, Constraint: req.Version})
	}
	if len(requests) == 0 {
		return fmt.Errorf("no tools declared in %s to sync shims for", manifestDisplayName())
	}

	res := resolver.New(env.registry, env.lock, env.versions, env.paths)
	plan, err := res.Resolve(context.Background(), requests)
	if err != nil {
		return err
	}

	mgr := shim.New(env.paths)
	installed := lo.Filter(plan.Order, func(rt resolver.ResolvedTool, _ int) bool { return !rt.FromHostPath })
	want := lo.FilterMap(installed, func(rt resolver.ResolvedTool, _ int) (shim.Target, bool) {
		spec, ok := env.registry.Resolve(rt.Tool)
		if !ok {
			return shim.Target{}, false
		}
		return shim.Target{Tool: rt.Tool, Executable: spec.Executable, Path: rt.Executable}, true
	})
	if err := mgr.Sync(want); err != nil {
		return err
	}
	logger.Infof("synced %d shims", len(want))
	return nil
}

func newShimRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove EXECUTABLE",
		Short: "Remove a single shim by its executable name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment()
			if err != nil {
				return err
			}
			return shim.New(env.paths).Remove(args[0])
		},
	}
}
