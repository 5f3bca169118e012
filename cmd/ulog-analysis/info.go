package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/omerfarukorc/ulog-analysis/explorer"
	"github.com/omerfarukorc/ulog-analysis/ulog"
)

var infoCmd = &cobra.Command{
	Use: "info <file.ulg>",

	Short: "Prints the vehicle summary and flight statistics of a log file.",

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		path := args[0]
		u, err := ulog.ReadFile(path)
		if err != nil {
			color.Red("%v", err)
			return err
		}
		info := explorer.BuildInfo(u)

		size := ""
		if stat, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(stat.Size()))
		}

		color.Cyan("Vehicle")
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetAutoWrapText(false)
		rows := [][]string{
			{"System", info.SysName},
			{"Hardware", info.HWVersion},
			{"Firmware", info.SWRelease},
			{"Branch", info.SWBranch},
			{"OS", fmt.Sprintf("%s %s", info.OS, info.OSVersion)},
			{"Estimator", info.Estimator},
			{"Start time", info.StartTime},
			{"Duration", info.Duration},
			{"Topics", fmt.Sprintf("%d", info.TopicCount)},
			{"Dropouts", fmt.Sprintf("%d", info.DropoutCount)},
			{"File size", size},
		}
		for _, row := range rows {
			if row[1] != "" {
				tw.Append(row)
			}
		}
		tw.Render()

		flight := [][]string{
			{"Distance", info.Flight.Distance},
			{"Max altitude", info.Flight.MaxAltitude},
			{"Max speed", info.Flight.MaxSpeed},
			{"Avg speed", info.Flight.AvgSpeed},
			{"Max speed up", info.Flight.MaxSpeedUp},
			{"Max speed down", info.Flight.MaxSpeedDown},
			{"Max tilt", info.Flight.MaxTilt},
		}
		color.Cyan("Flight")
		tw = tablewriter.NewWriter(os.Stdout)
		tw.SetAutoWrapText(false)
		for _, row := range flight {
			if row[1] != "" {
				tw.Append(row)
			}
		}
		tw.Render()

		if info.Truncated {
			color.Yellow("warning: log file is truncated, values cover the readable part only")
		}
		return nil
	},
}
