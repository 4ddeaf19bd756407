package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aallbrig/swarmui/render"
)

func newTreeCmd() *cobra.Command {
	var (
		depth   int
		filter  string
		exclude string
		output  string
		stats   bool
	)
	c := &cobra.Command{
		Use:   "tree [definition-file...]",
		Short: "Print the assembled command tree",
		Long: `Print the command tree a session would start with.

Examples:
  swarmui tree                        # built-in robot commands only
  swarmui tree arm.json --depth=2     # limit to two levels
  swarmui tree --output=yaml arm.json # machine-readable output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := buildTree(args)
			if err != nil {
				return err
			}
			if stats {
				s := render.Collect(root)
				fmt.Fprintf(cmd.OutOrStdout(), "nodes: %d\nleaves: %d\nparameters: %d\ndepth: %d\n",
					s.Nodes, s.Leaves, s.Params, s.MaxDepth)
				return nil
			}
			opts := render.Options{
				MaxDepth: depth,
				Filter:   filter,
				Exclude:  exclude,
				Output:   output,
				NoColor:  cfg.NoColor,
				Colors:   cfg.Colors,
			}
			return render.New(opts).Render(cmd.OutOrStdout(), root)
		},
	}
	c.Flags().IntVar(&depth, "depth", -1, "Max tree depth (-1 = unlimited)")
	c.Flags().StringVar(&filter, "filter", "", "Only show nodes matching pattern")
	c.Flags().StringVar(&exclude, "exclude", "", "Exclude nodes matching pattern")
	c.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, yaml")
	c.Flags().BoolVar(&stats, "stats", false, "Print node counts instead of the tree")
	return c
}
