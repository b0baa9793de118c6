package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/argumentaire/pkg/core"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseSources(t *testing.T) {
	got := parseSources([]string{"Titre|Auteur|https://e.org", "Seul titre", "||https://u.rl", "a|b|c|d"})
	assert.Equal(t, []core.Source{
		{Titre: "Titre", Auteur: "Auteur", URL: "https://e.org"},
		{Titre: "Seul titre"},
		{URL: "https://u.rl"},
		{Titre: "a", Auteur: "b", URL: "c|d"},
	}, got)
}

func TestAddThenExport(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "add", "--data-dir", dir,
		"--phrase", "  Ce n'est qu'une blague ",
		"--argumentaire", "L'humour n'excuse pas le contenu.",
		"--source", "Étude||https://example.org/?a=1&b=2",
	)
	require.NoError(t, err, out)

	var stored core.Record
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	assert.Equal(t, "Ce n'est qu'une blague", stored.Phrase)
	assert.Equal(t, []core.Source{{Titre: "Étude", URL: "https://example.org/?a=1&b=2"}}, stored.Sources)
	assert.FileExists(t, filepath.Join(dir, "argumentaires.json"))

	out, err = run(t, "export", "--data-dir", dir, "--format", "yaml")
	require.NoError(t, err, out)
	assert.Contains(t, out, "phrase: Ce n'est qu'une blague")

	exported := filepath.Join(t.TempDir(), "export.json")
	_, err = run(t, "export", "--data-dir", dir, "--format", "json", "--output", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n"))
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := run(t, "export", "--data-dir", t.TempDir(), "--format", "csv")
	assert.Error(t, err)
}

func TestRebuildReport(t *testing.T) {
	out, err := run(t, "rebuild", "--data-dir", t.TempDir())
	require.NoError(t, err, out)
	assert.Contains(t, out, "written=true")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "argumentaire version "))
}
