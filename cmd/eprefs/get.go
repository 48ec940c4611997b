package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/eprefs/pkg/core"
)

var (
	getType string
	getJSON bool
)

var getCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Read a value",
	Long:  `Read the value stored under key as --type. Exits with status 1 if the key is absent.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, err := core.ParseType(getType)
		if err != nil {
			fatal("Invalid type", err)
		}

		p, err := openPrefs(cmd)
		if err != nil {
			fatal("Failed to open namespace", err)
		}
		defer p.Close()

		v, ok, err := p.Load(context.Background(), args[0], t)
		if err != nil {
			fatal("Failed to load", err)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "key %q not found\n", args[0])
			p.Close()
			os.Exit(1)
		}

		if getJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(v); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}
		fmt.Println(formatValue(v))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVarP(&getType, "type", "t", "string", "Value type")
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Output in JSON format")
}
