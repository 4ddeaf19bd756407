package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aallbrig/swarmui/journal"
)

func newJournalCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the journal of executed commands",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recently executed commands, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open(cfg.JournalDir)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()
			entries, err := j.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no commands recorded")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%5d  %s  %s\n", e.ID, e.At.Format("2006-01-02 15:04:05"), e.Command())
			}
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries (0 = all)")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count executions per command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open(cfg.JournalDir)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()
			counts, err := j.Counts()
			if err != nil {
				return err
			}
			paths := make([]string, 0, len(counts))
			for p := range counts {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "%5d  %s\n", counts[p], p)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open(cfg.JournalDir)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()
			if err := j.Clear(); err != nil {
				return fmt.Errorf("clear journal: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Journal cleared.")
			return nil
		},
	}

	c.AddCommand(list, stats, clearCmd)
	return c
}
