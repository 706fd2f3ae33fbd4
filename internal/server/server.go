// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools that depend on abstractions. No business
// logic lives here — only wiring.
package server

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/HendryAvila/scout/internal/cache"
	"github.com/HendryAvila/scout/internal/history"
	"github.com/HendryAvila/scout/internal/ratelimit"
	"github.com/HendryAvila/scout/internal/research"
	"github.com/HendryAvila/scout/internal/sources"
	"github.com/HendryAvila/scout/internal/synthesis"
	"github.com/HendryAvila/scout/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with both tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the history store's database
// connection and must be called on shutdown (typically via defer). It is
// always non-nil and safe to call even if history init failed.
func New() (*server.MCPServer, func(), error) {
	// stdout carries the MCP protocol, so logs go to stderr.
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	searchClient := &http.Client{Timeout: sources.RequestTimeout}
	llmClient := &http.Client{Timeout: synthesis.CallTimeout}

	aggregator := sources.NewAggregator(searchClient, log)
	dispatcher := synthesis.NewDispatcher(log, synthesis.DefaultProviders(llmClient)...)

	// History is an independent subsystem: if it fails to initialize the
	// search tools keep working. We log a warning and run without it.
	cleanup := noop
	var recorder research.Recorder
	var stats tools.HistoryStats
	historyStore, histErr := history.Open(history.Config{})
	if histErr != nil {
		log.WithError(histErr).Warn("search history disabled")
	} else {
		recorder = historyStore
		stats = historyStore
		cleanup = func() {
			if err := historyStore.Close(); err != nil {
				log.WithError(err).Warn("closing history store")
			}
		}
	}

	orchestrator := research.New(
		ratelimit.New(),
		cache.NewMemoryStore(),
		aggregator,
		dispatcher,
		research.DefaultRetry(),
		recorder,
		log,
	)

	s := server.NewMCPServer(
		"scout",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	searchTool := tools.NewSearchTool(orchestrator)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	contextTool := tools.NewContextTool(Version, dispatcher, stats)
	s.AddTool(contextTool.Definition(), contextTool.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when history is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use scout effectively.
func serverInstructions() string {
	return `You have access to scout, a community research MCP server.

## What scout does

community_search queries Stack Overflow, GitHub issues, Reddit, and Hacker
News in parallel, then uses an LLM to distill the raw hits into 3-5
actionable recommendations with evidence, difficulty, and gotchas.

## When to use community_search

- The user asks how others solve a specific engineering problem
- You are choosing between libraries, patterns, or architectures and want
  real-world evidence rather than documentation claims
- A bug or performance issue smells like something the community has
  already hit and discussed

## How to write good queries

Call get_server_context once first: it detects the workspace language and
frameworks, so you can fill the language parameter without asking.

Be specific in the topic. The server rejects vague one-or-two-word topics
like "tips" or "best practices".

Bad:  topic="python tips"
Good: topic="FastAPI background task queue with Redis"

Use goal for what the user is trying to achieve ("reduce p99 latency")
and current_setup for what they already run ("Celery with RabbitMQ") so
the recommendations can account for it.

## Practical notes

- Results are cached for an hour: repeating the same query is free
- The server allows 10 searches per minute, so batch your questions
- Use response_format="json" when you need to post-process findings;
  the default markdown is for presenting to the user
- An LLM API key (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
  OPENROUTER_API_KEY, or PERPLEXITY_API_KEY) must be set in the server's
  environment. get_server_context reports which provider is configured.`
}
