package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Merge seed, store and legacy database into the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		inst, err := openInstance(cmd.Context(), cfg, platform.WithAutoInit(true))
		if err != nil {
			return err
		}

		r := inst.Report
		fmt.Fprintf(cmd.OutOrStdout(), "seed=%d current=%d legacy=%d total=%d written=%t\n",
			r.Seed, r.Current, r.Legacy, r.Total, r.Written)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}
