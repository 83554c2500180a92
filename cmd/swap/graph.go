package main

import (
	"fmt"

	"github.com/aretw0/swap/internal/presentation/graph"
	"github.com/aretw0/swap/internal/runtime"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the collection flow as a Mermaid diagram",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetString("current")

		var overlay *graph.GraphOverlay
		if current != "" {
			step := domain.Step(current)
			known := false
			for _, s := range runtime.Steps() {
				known = known || s == step
			}
			if !known {
				return fmt.Errorf("unknown step %q", current)
			}
			overlay = &graph.GraphOverlay{CurrentStep: step}
		}

		_, err := fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(runtime.Steps(), runtime.Rules(), overlay))
		return err
	},
}

func init() {
	graphCmd.Flags().String("current", "", "Highlight a step (e.g. awaiting_pin)")
	rootCmd.AddCommand(graphCmd)
}
