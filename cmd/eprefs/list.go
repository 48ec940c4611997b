package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/eprefs/pkg/core"
)

var listJSON bool

// listEntry is one stored slot as printed by list.
type listEntry struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List stored keys",
	Long: `List the stored slots of the namespace, optionally filtered by a glob
pattern (e.g. "user/**"). Fan-out element keys are listed as stored.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		p, err := openPrefs(cmd)
		if err != nil {
			fatal("Failed to open namespace", err)
		}
		defer p.Close()

		ctx := context.Background()
		keys, err := p.Keys(ctx, pattern)
		if err != nil {
			fatal("Failed to list keys", err)
		}
		all, err := p.Store().All(ctx)
		if err != nil {
			fatal("Failed to read namespace", err)
		}

		entries := make([]listEntry, 0, len(keys))
		for _, k := range keys {
			v := all[k]
			entries = append(entries, listEntry{Key: k, Type: core.KindOf(v).String(), Value: v})
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(entries); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		cyan := color.New(color.FgCyan)
		gray := color.New(color.FgHiBlack)
		for _, e := range entries {
			fmt.Printf("%s %s %v\n", cyan.Sprint(e.Key), gray.Sprintf("(%s)", e.Type), e.Value)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
