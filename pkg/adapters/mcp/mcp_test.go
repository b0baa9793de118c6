package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	mcppkg "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/argumentaire/pkg/adapters/fs"
	"github.com/aretw0/argumentaire/pkg/core"
)

func newMCPTestService(t *testing.T, opts ...core.ServiceOption) *core.Service {
	t.Helper()
	store, err := fs.NewStore(fs.Config{Path: filepath.Join(t.TempDir(), "argumentaires.json")})
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))
	return core.NewService(store, opts...)
}

func callResultText(t *testing.T, res *mcppkg.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := mcppkg.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func callTool(t *testing.T, h func(context.Context, mcppkg.CallToolRequest) (*mcppkg.CallToolResult, error), args map[string]any) *mcppkg.CallToolResult {
	t.Helper()
	req := mcppkg.CallToolRequest{Params: mcppkg.CallToolParams{Arguments: args}}
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestNewServerRegistersTools(t *testing.T) {
	srv := NewServer(newMCPTestService(t), "test")
	require.NotNil(t, srv)
}

func TestSubmitThenList(t *testing.T) {
	svc := newMCPTestService(t)

	res := callTool(t, handleSubmit(svc), map[string]any{
		"phrase":       "  Les femmes sont trop émotives ",
		"argumentaire": "Aucune donnée ne le montre.",
		"sources": []any{
			map[string]any{"titre": "Étude", "url": "https://example.org"},
			map[string]any{"titre": "", "auteur": " "},
			"ignored",
		},
	})
	require.False(t, res.IsError, callResultText(t, res))

	var stored core.Record
	require.NoError(t, json.Unmarshal([]byte(callResultText(t, res)), &stored))
	assert.Equal(t, "Les femmes sont trop émotives", stored.Phrase)
	assert.Equal(t, []core.Source{{Titre: "Étude", URL: "https://example.org"}}, stored.Sources)

	res = callTool(t, handleList(svc), map[string]any{})
	require.False(t, res.IsError)

	var listed []core.Record
	require.NoError(t, json.Unmarshal([]byte(callResultText(t, res)), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, stored, listed[0])
}

func TestSubmitRequiresFields(t *testing.T) {
	svc := newMCPTestService(t)

	res := callTool(t, handleSubmit(svc), map[string]any{"phrase": "p"})
	assert.True(t, res.IsError)
	assert.Contains(t, callResultText(t, res), "argumentaire is required")

	res = callTool(t, handleSubmit(svc), map[string]any{"argumentaire": "a"})
	assert.True(t, res.IsError)
	assert.Contains(t, callResultText(t, res), "phrase is required")
}

func TestSubmitRejectsNonArraySources(t *testing.T) {
	svc := newMCPTestService(t)

	res := callTool(t, handleSubmit(svc), map[string]any{
		"phrase": "p", "argumentaire": "a", "sources": map[string]any{"titre": "t"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, callResultText(t, res), "array")
}

func TestSubmitReadOnly(t *testing.T) {
	svc := newMCPTestService(t, core.WithServiceReadOnly(true))

	res := callTool(t, handleSubmit(svc), map[string]any{"phrase": "p", "argumentaire": "a"})
	assert.True(t, res.IsError)
	assert.Contains(t, callResultText(t, res), core.ErrReadOnly.Error())
}

type failingCatalogue struct{}

func (failingCatalogue) ListAll(context.Context) ([]core.Record, error) {
	return nil, errors.New("disk gone")
}

func (failingCatalogue) Upsert(context.Context, string, string, []core.Source) (core.Record, error) {
	return core.Record{}, errors.New("disk gone")
}

func TestToolFailuresAreReported(t *testing.T) {
	res := callTool(t, handleList(failingCatalogue{}), map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, callResultText(t, res), "Failed to list")

	res = callTool(t, handleSubmit(failingCatalogue{}), map[string]any{"phrase": "p", "argumentaire": "a"})
	assert.True(t, res.IsError)
	assert.Contains(t, callResultText(t, res), "Failed to save")
}

func TestListSeedFallback(t *testing.T) {
	svc := newMCPTestService(t, core.WithSeed(func() []core.Record {
		return []core.Record{{Phrase: "B", Argumentaire: "b"}, {Phrase: "a", Argumentaire: "a"}}
	}))

	res := callTool(t, handleList(svc), map[string]any{})
	var listed []core.Record
	require.NoError(t, json.Unmarshal([]byte(callResultText(t, res)), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "a", listed[0].Phrase)
	assert.Equal(t, "B", listed[1].Phrase)
}

func TestListReturnsEveryRecord(t *testing.T) {
	svc := newMCPTestService(t, core.WithSeed(func() []core.Record {
		return []core.Record{{Phrase: "B", Argumentaire: "b"}, {Phrase: "a", Argumentaire: "a"}}
	}))

	// The catalogue is always listed whole; unknown arguments do not narrow it.
	res := callTool(t, handleList(svc), map[string]any{"contains": "a"})
	require.False(t, res.IsError)
	var listed []core.Record
	require.NoError(t, json.Unmarshal([]byte(callResultText(t, res)), &listed))
	assert.Len(t, listed, 2)
}
