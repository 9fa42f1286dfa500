package main

import (
	"context"
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/vx/internal/lockfile"
	"github.com/flanksource/vx/internal/resolver"
	"github.com/spf13/cobra"
)

func newLockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lock [TOOL...]",
		Short: "Re-resolve the project manifest's tools and rewrite the lock file",
		Long: `lock re-runs resolution for every tool in vx.toml, ignoring any existing
lock entries, and writes the result to vx-lock.toml. With arguments, only
those tools are re-resolved and merged into the existing lock file.`,
		RunE: runLock,
	}
}

func runLock(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	requests := make([]resolver.ToolRequest, 0, len(env.project.Tools))
	if len(args) == 0 {
		for name, req := range env.project.Tools {
			requests = append(requests, resolver.ToolRequest{Tool: name, Constraint: req.Version})
		}
	} else {
		for _, spec := range args {
			tool, constraint := splitToolSpec(spec)
			if constraint == "" {
				if req, ok := env.project.Tools[tool]; ok {
					constraint = req.Version
				}
			}
			requests = append(requests, resolver.ToolRequest{Tool: tool, Constraint: constraint})
		}
	}
	if len(requests) == 0 {
		return fmt.Errorf("no tools declared in %s to lock", manifestDisplayName())
	}

	// Resolve against a fresh, empty lock so every re-locked candidate is
	// re-fetched rather than short-circuited by its own stale entry. The
	// resulting entries are then merged into (not replacing) whatever is
	// already on disk, so a targeted `lock node` leaves other tools' pins
	// untouched.
	res := resolver.New(env.registry, nil, env.versions, env.paths)
	plan, err := res.Resolve(context.Background(), requests)
	if err != nil {
		return fmt.Errorf("resolving lock: %w", err)
	}

	newLock := env.lock
	if newLock == nil {
		newLock = lockfile.New()
	}
	for _, rt := range plan.Order {
		if rt.FromHostPath {
			continue
		}
		newLock.Set(rt.Tool, lockfile.LockedTool{
			Version:      rt.Version,
			Source:       rt.Source,
			ResolvedFrom: rt.ResolvedFrom,
			Ecosystem:    rt.Ecosystem,
			Dependencies: rt.Dependencies,
		})
	}
	if err := newLock.Validate(); err != nil {
		return err
	}

	if err := lockfile.Save(newLock, lockFileName); err != nil {
		return fmt.Errorf("writing %s: %w", lockFileName, err)
	}
	logger.Infof("wrote %s with %d tools", lockFileName, len(newLock.Names()))
	return nil
}
