package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/omerfarukorc/ulog-analysis/ulog"
)

var topicsCmd = &cobra.Command{
	Use: "topics <file.ulg>",

	Short: "Lists the recorded topics of a log file with sample and field counts.",

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		u, err := ulog.ReadFile(args[0])
		if err != nil {
			color.Red("%v", err)
			return err
		}

		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"topic", "samples", "fields"})

		total := 0
		for _, d := range u.DataList() {
			total += d.Size()
			tw.Append([]string{
				d.Label(),
				humanize.Comma(int64(d.Size())),
				fmt.Sprintf("%d", len(d.FieldNames())),
			})
		}
		tw.Render()
		fmt.Printf("%d topics, %s samples total\n", len(u.DataList()), humanize.Comma(int64(total)))
		return nil
	},
}
