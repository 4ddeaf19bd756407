package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aallbrig/swarmui/tui"
)

func newBrowseCmd() *cobra.Command {
	var vim bool
	c := &cobra.Command{
		Use:   "browse [definition-file...]",
		Short: "Explore the command tree interactively",
		Long: `Open a full-screen browser over the command tree.

Enter on a command prints its command line, ready to paste at the
session prompt; c copies it to the clipboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := buildTree(args)
			if err != nil {
				return err
			}
			scheme := tui.SchemeArrows
			if vim {
				scheme = tui.SchemeVim
			}
			chosen, err := tui.Run(root, cfg, scheme)
			if err != nil {
				return err
			}
			if chosen != "" {
				fmt.Fprintln(cmd.OutOrStdout(), chosen)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&vim, "vim", false, "Use h/j/k/l navigation")
	return c
}
