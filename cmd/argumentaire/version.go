package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of argumentaire",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "argumentaire version %s\n", strings.TrimSpace(argumentaire.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
