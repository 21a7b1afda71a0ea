package main

import (
	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/royaldns/core/cmd"
	"github.com/m3rciful/royaldns/dns/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	return corecmd.Run(corecmd.Options{
		ConfigPath:        path,
		DefaultConfigPath: "configs/config.yaml",
		DotEnvFiles:       []string{".env"},
		LoadConfig: func(p string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(p)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return app.Bootstrap(cfg.(*app.Config))
		},
	})
}
