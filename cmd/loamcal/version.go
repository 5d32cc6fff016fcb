package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/loamcal"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of loamcal",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("loamcal version %s\n", strings.TrimSpace(loamcal.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
