// Scout: Community Research MCP Server
//
// An MCP server that searches Stack Overflow, GitHub, Reddit, and Hacker
// News for community solutions to programming questions and synthesizes
// the results into actionable recommendations with an LLM.
//
// Usage:
//
//	scout serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	scoutserver "github.com/HendryAvila/scout/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("scout v%s\n", scoutserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := scoutserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Scout v%s — Community Research MCP Server

Usage:
  scout serve    Start the MCP server (stdio transport)

Environment:
  Set at least one LLM API key for synthesis:
  GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
  OPENROUTER_API_KEY, or PERPLEXITY_API_KEY

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "scout": {
        "command": "scout",
        "args": ["serve"]
      }
    }
  }
`, scoutserver.Version)
}
