package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
	"github.com/aretw0/argumentaire/pkg/adapters/fs"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the sorted catalogue as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serializer, err := fs.SerializerFor(exportFormat)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.ReadOnly = true

		inst, err := openInstance(cmd.Context(), cfg, platform.WithRebuild(false))
		if err != nil {
			return err
		}

		records, err := inst.Service.ListAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		data, err := serializer.Serialize(records)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if exportOutput != "" {
			return os.WriteFile(exportOutput, data, 0644)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
}
