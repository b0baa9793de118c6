package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
)

var initConfig bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a catalogue in a directory",
	Long: `Create the data directory and write the store, starting from the built-in
seed and any legacy database found there.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			fatal("Failed to resolve directory", err)
		}

		cfg := platform.DefaultConfig()
		cfg.DataDir = abs
		cfg.CrossProcessLock = crossProcess
		inst, err := openInstance(cmd.Context(), cfg, platform.WithAutoInit(true))
		if err != nil {
			fatal("Failed to initialize catalogue", err)
		}

		if initConfig {
			path := filepath.Join(inst.DataDir, "argumentaire.yaml")
			if _, err := os.Stat(path); err == nil {
				fatal("Config already exists", fmt.Errorf("%s", path))
			}
			if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
				fatal("Failed to write config", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized catalogue with %d entries in %s\n", inst.Report.Total, inst.DataDir)
	},
}

const defaultConfigYAML = `# argumentaire configuration
data_dir: .
addr: ":8000"
static_dir: .
store_file: argumentaires.json
legacy_file: argumentaires.db
read_only: false
cross_process_lock: false
lock_timeout: 5s
rate_limit: 5
rate_burst: 10
`

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initConfig, "config-file", false, "Also write a default argumentaire.yaml")
}
