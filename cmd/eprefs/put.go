package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

var (
	putType  string
	putAsync bool
)

var putCmd = &cobra.Command{
	Use:   "put [key] [value]",
	Short: "Store a value",
	Long: `Store a primitive or a primitive array under key.
Types: bool, int, long, float, string and their array forms (int[], ...).
Array values are comma separated: eprefs put scores 3,1,2 --type int[]`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		t, err := core.ParseType(putType)
		if err != nil {
			fatal("Invalid type", err)
		}
		value, err := parseValue(t, args[1])
		if err != nil {
			fatal("Invalid value", err)
		}

		p, err := openPrefs(cmd)
		if err != nil {
			fatal("Failed to open namespace", err)
		}
		defer p.Close()

		var opts []prefs.WriteOption
		if putAsync {
			opts = append(opts, prefs.Async())
		}
		if err := p.Save(context.Background(), args[0], value, opts...); err != nil {
			fatal("Failed to save", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().StringVarP(&putType, "type", "t", "string", "Value type")
	putCmd.Flags().BoolVar(&putAsync, "async", false, "Apply without waiting for the commit")
}
