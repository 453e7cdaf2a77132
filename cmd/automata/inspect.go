package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/snapshot"
)

func newInspectCmd() *cobra.Command {
	var storage string
	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Print extent, live cells and state histogram of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := grid.ParseStorageKind(storage)
			if err != nil {
				return err
			}
			g, err := snapshot.LoadFile(args[0], kind)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), args[0], g)
			return nil
		},
	}
	cmd.Flags().StringVar(&storage, "storage", "dense", "Storage to load into: dense or sparse")
	return cmd
}

func printSummary(w io.Writer, name string, g *grid.Grid) {
	hist := map[grid.State]int{}
	for s := range g.States() {
		hist[s]++
	}
	states := make([]grid.State, 0, len(hist))
	for s := range hist {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })

	e := g.Extent()
	fmt.Fprintf(w, "snapshot: %s\n", name)
	fmt.Fprintf(w, "extent:   %v (%d cells)\n", e, e.CellCount())
	fmt.Fprintf(w, "live:     %d\n", g.LiveCount())
	for _, s := range states {
		fmt.Fprintf(w, "state %3d: %d\n", s, hist[s])
	}
}
