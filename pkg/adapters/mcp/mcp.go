// Package mcp exposes the catalogue as Model Context Protocol tools so that
// agents can read and extend it over stdio.
//
//	argumentaire mcp   → list_argumentaires, submit_argumentaire
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/argumentaire/pkg/core"
)

// Catalogue is the part of core.Service the tools need.
type Catalogue interface {
	ListAll(ctx context.Context) ([]core.Record, error)
	Upsert(ctx context.Context, phrase, argumentaire string, sources []core.Source) (core.Record, error)
}

const serverInstructions = `Argumentaire is a catalogue of common phrases paired with a counter-argument ` +
	`and supporting sources. Use list_argumentaires to read the catalogue and ` +
	`submit_argumentaire to add an entry or replace the one with the same phrase.`

// NewServer creates an MCP server with every tool registered.
func NewServer(c Catalogue, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"argumentaire",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)
	registerTools(srv, c)
	return srv
}

func registerTools(srv *server.MCPServer, c Catalogue) {
	srv.AddTool(
		mcp.NewTool("list_argumentaires",
			mcp.WithDescription("List every entry of the catalogue, ordered by phrase (case-insensitive)."),
			mcp.WithTitleAnnotation("List Argumentaires"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
		),
		handleList(c),
	)

	srv.AddTool(
		mcp.NewTool("submit_argumentaire",
			mcp.WithDescription("Add an entry to the catalogue, or replace the entry that has exactly the same phrase."),
			mcp.WithTitleAnnotation("Submit Argumentaire"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithString("phrase",
				mcp.Required(),
				mcp.Description("The phrase being answered; it identifies the entry"),
			),
			mcp.WithString("argumentaire",
				mcp.Required(),
				mcp.Description("The counter-argument"),
			),
			mcp.WithArray("sources",
				mcp.Description("Supporting sources, each an object with optional titre, auteur and url"),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"titre":  map[string]any{"type": "string"},
						"auteur": map[string]any{"type": "string"},
						"url":    map[string]any{"type": "string"},
					},
				}),
			),
		),
		handleSubmit(c),
	)
}

func handleList(c Catalogue) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := c.ListAll(ctx)
		if err != nil {
			return mcp.NewToolResultError("Failed to list: " + err.Error()), nil
		}
		return jsonResult(records)
	}
}

func handleSubmit(c Catalogue) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		phrase, _ := args["phrase"].(string)
		argumentaire, _ := args["argumentaire"].(string)

		raw, present := args["sources"]
		if present && raw != nil {
			if _, ok := raw.([]any); !ok {
				return mcp.NewToolResultError("sources must be an array of objects"), nil
			}
		}

		record, err := c.Upsert(ctx, phrase, argumentaire, core.SourcesFromRaw(raw))
		switch {
		case err == nil:
		case errors.Is(err, core.ErrInvalidRecord), errors.Is(err, core.ErrReadOnly):
			return mcp.NewToolResultError(err.Error()), nil
		default:
			return mcp.NewToolResultError("Failed to save: " + err.Error()), nil
		}

		return jsonResult(record)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
