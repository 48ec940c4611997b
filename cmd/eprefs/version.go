package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/eprefs"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of eprefs",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("eprefs version %s\n", strings.TrimSpace(eprefs.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
