package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "royaldns",
	Short: "Royal DNS Telegram menu bot",
	Long:  `Serves the Royal DNS plan menu over Telegram: country and duration selection with a plan summary.`,
	// Running without a subcommand starts the bot.
	RunE:          runBot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config.yaml (overrides CONFIG_PATH)")
}
