package main

import (
	"context"
	"fmt"

	"github.com/flanksource/vx/internal/resolver"
	"github.com/spf13/cobra"
)

func newWhichCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "which TOOL[@VERSION]",
		Short: "Print the resolved on-disk path for a tool without installing it",
		Args:  cobra.ExactArgs(1),
		RunE:  runWhich,
	}
}

func runWhich(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	tool, constraint := splitToolSpec(args[0])
	res := resolver.New(env.registry, env.lock, env.versions, env.paths)
	plan, err := res.Resolve(context.Background(), []resolver.ToolRequest{{Tool: tool, Constraint: constraint}})
	if err != nil {
		return err
	}

	for _, rt := range plan.Order {
		if rt.Tool != tool {
			continue
		}
		fmt.Println(rt.Executable)
		return nil
	}
	return fmt.Errorf("tool %s not found in resolved plan", tool)
}
