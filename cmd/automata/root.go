package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd собирает дерево команд CLI
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "automata",
		Short:        "Parallel cellular automaton on a wrapped 3D grid",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newInspectCmd(), newRulesCmd())
	return root
}
