package main

import (
	"github.com/aretw0/swap/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the collection terminal",
	Long: `Starts an interactive terminal session on this console.
Type 'help' at the prompt for the list of commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.TerminalID, _ = cmd.Flags().GetString("terminal")
		opts.Listen, _ = cmd.Flags().GetString("listen")
		opts.RedisURL, _ = cmd.Flags().GetString("redis-url")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.NoReader, _ = cmd.Flags().GetBool("no-reader")

		return cli.Run(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("terminal", "", "Terminal ID to lease (overrides terminal.id)")
	runCmd.Flags().String("listen", "", "Address of the ops endpoints, e.g. :2112 (overrides http.listen)")
	runCmd.Flags().String("redis-url", "", "Redis URL for the distributed terminal lease (overrides lease.redis_url)")
	runCmd.Flags().String("log-level", "", "debug, info, warn or error (overrides log.level)")
	runCmd.Flags().Bool("no-reader", false, "Simulate a device without a proximity reader")

	// 'run' is the default when no command is given.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
