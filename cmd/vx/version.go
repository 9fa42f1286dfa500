package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(info versionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print vx's own version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("vx version %s\n", info.Version)
			fmt.Printf("  commit:   %s\n", info.Commit)
			fmt.Printf("  built:    %s\n", info.Date)
			fmt.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
