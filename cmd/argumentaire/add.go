package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
	"github.com/aretw0/argumentaire/pkg/core"
)

var (
	addPhrase       string
	addArgumentaire string
	addSources      []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an entry, or replace the one with the same phrase",
	Example: `  argumentaire add --phrase "Ce n'est qu'une blague" \
    --argumentaire "L'humour n'excuse pas le contenu." \
    --source "Titre|Auteur|https://example.org"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		inst, err := openInstance(cmd.Context(), cfg, platform.WithAutoInit(true), platform.WithRebuild(false))
		if err != nil {
			return err
		}

		record, err := inst.Service.Upsert(cmd.Context(), addPhrase, addArgumentaire, parseSources(addSources))
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	},
}

// parseSources reads "titre|auteur|url" values; missing parts are empty.
func parseSources(values []string) []core.Source {
	sources := make([]core.Source, 0, len(values))
	for _, v := range values {
		parts := strings.SplitN(v, "|", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		sources = append(sources, core.Source{Titre: parts[0], Auteur: parts[1], URL: parts[2]})
	}
	return sources
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addPhrase, "phrase", "", "Phrase answered by the entry (its key)")
	addCmd.Flags().StringVar(&addArgumentaire, "argumentaire", "", "Counter-argument")
	addCmd.Flags().StringArrayVar(&addSources, "source", nil, `Source as "titre|auteur|url" (repeatable)`)
	_ = addCmd.MarkFlagRequired("phrase")
	_ = addCmd.MarkFlagRequired("argumentaire")
}
