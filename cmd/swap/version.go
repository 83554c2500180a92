package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/aretw0/swap"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the terminal build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if short, _ := cmd.Flags().GetBool("short"); short {
			_, err := fmt.Fprintln(out, swap.Version)
			return err
		}
		_, err := fmt.Fprintf(out, "swap %s\n  commit:   %s\n  go:       %s\n  platform: %s/%s\n",
			swap.Version, revision(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return err
	},
}

// revision returns the VCS commit stamped by the Go toolchain, if any.
func revision() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}
