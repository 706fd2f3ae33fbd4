// Package tools defines the MCP tools the server exposes.
package tools

import (
	"context"

	"github.com/HendryAvila/scout/internal/research"
	"github.com/mark3labs/mcp-go/mcp"
)

// Researcher runs a community search end to end and always returns a
// renderable payload. Implemented by *research.Orchestrator.
type Researcher interface {
	Search(ctx context.Context, in research.Input) string
}

// SearchTool handles the community_search MCP tool.
type SearchTool struct {
	researcher Researcher
}

// NewSearchTool creates a SearchTool with its dependencies.
func NewSearchTool(researcher Researcher) *SearchTool {
	return &SearchTool{researcher: researcher}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("community_search",
		mcp.WithDescription(
			"Search Stack Overflow, GitHub, Reddit, and Hacker News for community "+
				"solutions to a programming question, then synthesize the results into "+
				"3-5 actionable recommendations with evidence and difficulty ratings. "+
				"Results are cached for an hour and rate limited to 10 searches per minute. "+
				"Be specific: 'FastAPI background task queue with Redis' works, "+
				"'python tips' does not.",
		),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("Programming language or technology, e.g. 'Python', 'Go', 'TypeScript'."),
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description(
				"Specific topic to research, at least 10 characters. "+
					"Vague one-or-two-word topics like 'tips' or 'best practices' are rejected.",
			),
		),
		mcp.WithString("goal",
			mcp.Description("What you are trying to achieve, e.g. 'reduce p99 latency'. Optional."),
		),
		mcp.WithString("current_setup",
			mcp.Description("Your current stack or approach, so recommendations can account for it. Optional."),
		),
		mcp.WithString("response_format",
			mcp.Description("Output format: 'markdown' for a readable report (default) or 'json' for structured data."),
			mcp.Enum("markdown", "json"),
		),
	)
}

// Handle processes the community_search tool call. Failures are rendered
// into the payload, so the MCP error channel is reserved for panics.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := research.Input{
		Language:     req.GetString("language", ""),
		Topic:        req.GetString("topic", ""),
		Goal:         req.GetString("goal", ""),
		CurrentSetup: req.GetString("current_setup", ""),
		Format:       req.GetString("response_format", ""),
	}
	return mcp.NewToolResultText(t.researcher.Search(ctx, in)), nil
}
