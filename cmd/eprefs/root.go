package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/eprefs"
	"github.com/aretw0/eprefs/internal/config"
	"github.com/aretw0/eprefs/internal/platform"
	"github.com/aretw0/eprefs/pkg/codec"
)

var (
	verbose    bool
	configPath string
	adapter    string
	path       string
	namespace  string
	codecName  string
	format     string
	envFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eprefs",
	Short: "Inspect and edit typed preference namespaces",
	Long: `eprefs reads and writes the namespaces of the eprefs library.
Arrays are shown fanned out into their length and element keys; records
are shown as their tagged encoded text.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		// Variables from the env file feed ${VAR} expansion in the config file.
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				fatal("Failed to load env file", err)
			}
			return
		}
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default: nearest eprefs.yaml)")
	flags.StringVar(&adapter, "adapter", "", "Store adapter: fs, sqlite or memory")
	flags.StringVar(&path, "path", "", "Directory (fs) or database file (sqlite)")
	flags.StringVarP(&namespace, "namespace", "n", "", "Namespace (default: preferences)")
	flags.StringVar(&codecName, "codec", "", "Record codec: text or binary")
	flags.StringVar(&format, "format", "", "File format of the fs adapter: json or yaml")
	flags.StringVar(&envFile, "env-file", "", "Env file loaded before the config (default: .env if present)")
}

// loadConfig reads --config, or the nearest config file above the working directory.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	found, err := platform.FindConfig(wd)
	if errors.Is(err, platform.ErrConfigNotFound) {
		return &config.Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("using config file", "path", found)
	return config.Load(found)
}

// openPrefs opens the namespace selected by the config file and the flags.
// Flags win over the config file.
func openPrefs(cmd *cobra.Command) (*eprefs.Prefs, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts := append(cfg.Options(), eprefs.WithLogger(slog.Default()))
	flags := cmd.Flags()
	if flags.Changed("adapter") {
		opts = append(opts, eprefs.WithAdapter(adapter))
	}
	if flags.Changed("path") {
		opts = append(opts, eprefs.WithPath(path))
	}
	if flags.Changed("format") {
		opts = append(opts, eprefs.WithFormat(format))
	}
	if flags.Changed("codec") {
		c, err := codec.ByName(codecName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, eprefs.WithCodec(c))
	}

	ns := cfg.Namespace
	if flags.Changed("namespace") {
		ns = namespace
	}
	return eprefs.Open(ns, opts...)
}
