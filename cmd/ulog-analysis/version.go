package main

import (
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"github.com/spf13/cobra"
)

var (
	progVersion = semver.Version{
		Major: 1,
		Minor: 0,
		Patch: 0,
	}

	buildVersion string
)

var versionCmd = &cobra.Command{
	Use: "version",

	Short: "Prints the version of the program.",

	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "%s\n", progVersion)
	},
}

func init() {
	if buildVersion != "" {
		progVersion.Build = []string{buildVersion}
	}
}
