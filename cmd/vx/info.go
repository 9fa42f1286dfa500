package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/flanksource/vx/internal/resolver"
	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	var versionLimit int
	cmd := &cobra.Command{
		Use:   "info TOOL[@VERSION]",
		Short: "Show a tool's resolved version, source, and dependency chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0], versionLimit)
		},
	}
	cmd.Flags().IntVar(&versionLimit, "versions", 10, "Number of available versions to list")
	return cmd
}

func runInfo(spec string, versionLimit int) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	tool, constraint := splitToolSpec(spec)
	rtSpec, ok := env.registry.Resolve(tool)
	if !ok {
		return fmt.Errorf("unknown tool %q", tool)
	}

	fmt.Printf("tool:       %s\n", rtSpec.Name)
	fmt.Printf("provider:   %s\n", rtSpec.Provider)
	fmt.Printf("ecosystem:  %s\n", rtSpec.Ecosystem)
	fmt.Printf("executable: %s\n", rtSpec.Executable)
	if len(rtSpec.Aliases) > 0 {
		fmt.Printf("aliases:    %s\n", strings.Join(rtSpec.Aliases, ", "))
	}
	if len(rtSpec.Dependencies) > 0 {
		deps := make([]string, len(rtSpec.Dependencies))
		for i, d := range rtSpec.Dependencies {
			deps[i] = d.Runtime
		}
		fmt.Printf("depends on: %s\n", strings.Join(deps, ", "))
	}

	ctx := context.Background()
	if versions, err := env.versions.Discover(ctx, rtSpec.VersionSource, versionLimit); err == nil {
		fmt.Printf("available:  %s\n", strings.Join(versions, ", "))
	}

	res := resolver.New(env.registry, env.lock, env.versions, env.paths)
	plan, err := res.Resolve(ctx, []resolver.ToolRequest{{Tool: tool, Constraint: constraint}})
	if err != nil {
		fmt.Printf("resolution: error: %v\n", err)
		return nil
	}
	for _, rt := range plan.Order {
		if rt.Tool != tool {
			continue
		}
		fmt.Printf("resolved:   %s\n", rt.Version)
		fmt.Printf("source:     %s\n", rt.Source)
		fmt.Printf("installed:  %v\n", !rt.NeedsInstall)
	}
	return nil
}
