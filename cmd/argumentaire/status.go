package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
	"github.com/aretw0/argumentaire/pkg/adapters/fs"
	"github.com/aretw0/argumentaire/pkg/core"
)

var statusMermaid bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the catalogue components",
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
		// Count what a reader would get without touching the store.
		if _, err := inst.Service.ListAll(cmd.Context()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if statusMermaid {
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "catalogue"
			config.SecondaryLabel = "Catalogue Topology"
			fmt.Fprintln(out, introspection.TreeDiagram(buildStatusTree(inst), config))
			return nil
		}

		status := make(map[string]any)
		for _, c := range inst.Components() {
			status[c.ComponentType()] = c.State()
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(status)
	},
}

type statusNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []statusNode
}

// buildStatusTree maps component state to the node shape used by the diagram.
// Status must match classes in introspection.DefaultStyles().
func buildStatusTree(inst *platform.Instance) statusNode {
	svcState := inst.Service.State().(core.ServiceState)

	root := statusNode{
		Name:   "Catalogue",
		Status: "running",
		Metadata: map[string]string{
			"type":      "container",
			"data_dir":  inst.DataDir,
			"read_only": fmt.Sprintf("%t", svcState.ReadOnly),
		},
	}

	service := statusNode{
		Name:   "Service",
		Status: "running",
		Metadata: map[string]string{
			"type":    "process",
			"records": fmt.Sprintf("%d", svcState.Records),
		},
	}

	if store, ok := inst.Repository.(*fs.Store); ok {
		st := store.State().(fs.StoreState)
		watcher := "suspended"
		if st.WatcherActive {
			watcher = "running"
		}
		service.Children = append(service.Children, statusNode{
			Name:   "Store",
			Status: "running",
			Metadata: map[string]string{
				"type":   "container",
				"path":   st.Path,
				"format": st.Format,
			},
			Children: []statusNode{{
				Name:     "Watcher",
				Status:   watcher,
				Metadata: map[string]string{"type": "goroutine"},
			}},
		})
	}

	if inst.Legacy != nil {
		service.Children = append(service.Children, statusNode{
			Name:     "Legacy",
			Status:   "stopped",
			Metadata: map[string]string{"type": "process"},
		})
	}

	root.Children = []statusNode{service}
	return root
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusMermaid, "mermaid", false, "Print a Mermaid diagram instead of JSON")
}
