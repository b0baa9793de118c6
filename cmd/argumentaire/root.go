package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
)

var (
	verbose      bool
	dataDir      string
	configPath   string
	readOnly     bool
	crossProcess bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "argumentaire",
	Short: "A catalogue of common phrases and the arguments that answer them",
	Long: `Argumentaire serves a catalogue of phrases paired with a counter-argument
and its sources. Entries live in a single JSON file rewritten atomically;
an older SQLite database is merged in when the catalogue starts.`,
	SilenceUsage: true,
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
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory holding the catalogue (default: discovered from the working directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (argumentaire.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Never write the store")
	rootCmd.PersistentFlags().BoolVar(&crossProcess, "lock", false, "Share the data directory safely with other processes")
}

// loadConfig resolves the configuration: file, then environment, then flags.
// Without --config the file is looked up in the discovered data directory.
func loadConfig() (platform.Config, error) {
	path := configPath
	root := ""
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return platform.Config{}, fmt.Errorf("get working directory: %w", err)
		}
		if found, err := platform.FindRoot(wd); err == nil {
			root = found
			path = platform.FindConfig(found)
		}
	}

	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if path == "" && root != "" {
		cfg.DataDir = root
	}

	cfg.ApplyEnv()

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if readOnly {
		cfg.ReadOnly = true
	}
	if crossProcess {
		cfg.CrossProcessLock = true
	}
	return cfg, nil
}

// openInstance wires the catalogue described by cfg.
func openInstance(ctx context.Context, cfg platform.Config, extra ...platform.Option) (*platform.Instance, error) {
	opts := append(cfg.Options(), platform.WithLogger(slog.Default()))
	opts = append(opts, extra...)
	return platform.Open(ctx, cfg.DataDir, opts...)
}
