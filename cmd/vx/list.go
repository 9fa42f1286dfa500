package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	var installedOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known runtimes and their installed versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(installedOnly)
		},
	}
	cmd.Flags().BoolVar(&installedOnly, "installed", false, "Only show tools with at least one installed version")
	return cmd
}

func runList(installedOnly bool) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	names := env.registry.Names()
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tECOSYSTEM\tINSTALLED VERSIONS")
	for _, name := range names {
		spec, _ := env.registry.Resolve(name)
		versions, _ := env.paths.ListToolVersions(name, spec.Executable)
		if installedOnly && len(versions) == 0 {
			continue
		}
		sort.Strings(versions)
		installed := "-"
		if len(versions) > 0 {
			installed = strings.Join(versions, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, spec.Ecosystem, installed)
	}
	return w.Flush()
}
