package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every entry of the catalogue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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
			return fmt.Errorf("list: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			encoder := json.NewEncoder(out)
			encoder.SetEscapeHTML(false)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}

		for _, r := range records {
			fmt.Fprintf(out, "%s (%d sources)\n", r.Phrase, len(r.Sources))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
