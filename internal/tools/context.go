package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/scout/internal/history"
	"github.com/HendryAvila/scout/internal/workspace"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProviderInfo reports LLM provider configuration. Implemented by
// *synthesis.Dispatcher.
type ProviderInfo interface {
	Active() string
	Supported() []string
}

// HistoryStats summarizes the search log. Implemented by *history.Store.
type HistoryStats interface {
	Summary() (history.Stats, error)
}

// ContextTool handles the get_server_context MCP tool. It gives clients
// a snapshot of server capabilities, the detected workspace, and sensible
// parameter defaults before their first search.
type ContextTool struct {
	version   string
	providers ProviderInfo
	history   HistoryStats // nil when the history store is unavailable
	detect    func() workspace.Context
}

// NewContextTool creates a ContextTool. history may be nil.
func NewContextTool(version string, providers ProviderInfo, stats HistoryStats) *ContextTool {
	return &ContextTool{
		version:   version,
		providers: providers,
		history:   stats,
		detect:    workspace.DetectCwd,
	}
}

// Definition returns the MCP tool definition for registration.
func (t *ContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_server_context",
		mcp.WithDescription(
			"Get server capabilities, the detected project workspace (languages, "+
				"frameworks, config files), suggested search defaults, configured LLM "+
				"providers, and search history statistics. Call this once before the "+
				"first community_search to pick good parameter values.",
		),
	)
}

type serverContext struct {
	Server             serverInfo         `json:"server"`
	ProjectContext     workspace.Context  `json:"project_context"`
	ContextDefaults    contextDefaults    `json:"context_defaults"`
	AvailableProviders availableProviders `json:"available_providers"`
	History            *history.Stats     `json:"history,omitempty"`
}

type serverInfo struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Capabilities capabilities `json:"capabilities"`
}

type capabilities struct {
	CommunitySearch bool `json:"community_search"`
	Caching         bool `json:"caching"`
	RateLimiting    bool `json:"rate_limiting"`
	SearchHistory   bool `json:"search_history"`
}

type contextDefaults struct {
	Language string `json:"language,omitempty"`
}

type availableProviders struct {
	// Configured is the provider that will serve searches, null when no
	// credential is set.
	Configured *string  `json:"configured"`
	Supported  []string `json:"supported"`
}

// Handle processes the get_server_context tool call.
func (t *ContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	detected := t.detect()

	sc := serverContext{
		Server: serverInfo{
			Name:    "scout",
			Version: t.version,
			Capabilities: capabilities{
				CommunitySearch: true,
				Caching:         true,
				RateLimiting:    true,
				SearchHistory:   t.history != nil,
			},
		},
		ProjectContext: detected,
		ContextDefaults: contextDefaults{
			Language: detected.DefaultLanguage(),
		},
		AvailableProviders: availableProviders{
			Supported: t.providers.Supported(),
		},
	}
	if active := t.providers.Active(); active != "" {
		sc.AvailableProviders.Configured = &active
	}
	if t.history != nil {
		if stats, err := t.history.Summary(); err == nil {
			sc.History = &stats
		}
	}

	payload, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling server context: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
