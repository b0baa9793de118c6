package main

import (
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire"
	"github.com/aretw0/argumentaire/internal/platform"
	"github.com/aretw0/argumentaire/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the catalogue as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Agents usually run next to a live server on the same directory.
		cfg.CrossProcessLock = true

		inst, err := openInstance(cmd.Context(), cfg, platform.WithAutoInit(true))
		if err != nil {
			return err
		}

		srv := mcp.NewServer(inst.Service, strings.TrimSpace(argumentaire.Version))
		return mcpserver.ServeStdio(srv)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
