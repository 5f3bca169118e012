package main

import (
	"os"

	"github.com/spf13/cobra"
)

var mainCmd = &cobra.Command{
	Use: "ulog-analysis",

	Short: "Local web tool for inspecting PX4/ArduPilot ULog flight logs.",

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func main() {
	mainCmd.AddCommand(serveCmd)
	mainCmd.AddCommand(infoCmd)
	mainCmd.AddCommand(topicsCmd)
	mainCmd.AddCommand(versionCmd)

	if err := mainCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
