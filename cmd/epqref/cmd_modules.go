package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"epqref/internal/refschema"
)

func newModulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List registered dump modules and their schemas",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			registry := refschema.Default()
			names := registry.Modules()
			sort.Strings(names)
			out := cmd.OutOrStdout()
			for _, name := range names {
				schema, _ := registry.Lookup(name)
				fmt.Fprintln(out, name)
				for _, col := range schema.Columns {
					nullable := ""
					if col.Nullable {
						nullable = " nullable"
					}
					fmt.Fprintf(out, "  %-28s %s%s\n", col.Name, col.Type, nullable)
				}
			}
		},
	}
}
