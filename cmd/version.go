package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/aallbrig/swarmui/link"
)

// Set at build time:
//
//	-X github.com/aallbrig/swarmui/cmd.Version=v0.3.0
//	-X github.com/aallbrig/swarmui/cmd.Commit=abc1234
//	-X github.com/aallbrig/swarmui/cmd.BuildDate=2026-01-01
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// revision falls back to the VCS stamp go build embeds.
func revision() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}

// versionString is shared by `swarmui version` and `swarmui --version`.
func versionString() string {
	s := "swarmui " + Version
	if rev := revision(); rev != "" {
		s += " (" + rev + ")"
	}
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}

func newVersionCmd() *cobra.Command {
	var verbose bool
	c := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "go: %s %s/%s\nlink: %s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH, link.ServiceName)
			}
		},
	}
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print Go runtime and link protocol")
	return c
}
