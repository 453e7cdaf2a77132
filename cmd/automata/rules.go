package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/annel0/automata/internal/rules"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List registered rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range rules.Names() {
				rule, err := rules.Lookup(name, nil)
				if err != nil {
					return err
				}
				states := "-"
				if st, ok := rule.(rules.Stateful); ok {
					states = fmt.Sprint(st.States())
				}
				fmt.Fprintf(w, "%-10s topology=%-12s states=%s\n", name, rule.Topology(), states)
			}
			return nil
		},
	}
}
