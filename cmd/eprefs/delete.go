package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/eprefs/pkg/core"
)

var deleteType string

var deleteCmd = &cobra.Command{
	Use:   "delete [key]",
	Short: "Delete a value",
	Long:  `Delete the value stored under key. Array types also remove their element keys.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, err := core.ParseType(deleteType)
		if err != nil {
			fatal("Invalid type", err)
		}

		p, err := openPrefs(cmd)
		if err != nil {
			fatal("Failed to open namespace", err)
		}
		defer p.Close()

		if err := p.Delete(context.Background(), args[0], t); err != nil {
			fatal("Failed to delete", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVarP(&deleteType, "type", "t", "string", "Value type")
}
