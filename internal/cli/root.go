package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Reactive subscriptions over a personal telemetry store",
	Long:  "Vigil polls a telemetry database, computes row deltas, and reacts with push notifications and derived device state. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}
