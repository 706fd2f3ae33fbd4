// Package synthesis turns raw aggregated search hits into structured
// recommendations using one of several LLM providers.
//
// Exactly one provider is used per call, chosen by a fixed priority order
// over configured credentials. Providers are interchangeable black boxes:
// each knows only its endpoint, auth header shape, and response-extraction
// path. The dispatcher owns the prompt contract and the normalization of
// whatever the provider sends back.
package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/scout/internal/query"
	"github.com/HendryAvila/scout/internal/sources"
	"github.com/sirupsen/logrus"
)

// CallTimeout bounds a single LLM call.
const CallTimeout = 60 * time.Second

// Finding is one synthesized recommendation.
type Finding struct {
	Title          string `json:"title"`
	Problem        string `json:"problem"`
	Solution       string `json:"solution"`
	Benefit        string `json:"benefit"`
	Evidence       string `json:"evidence"`
	Difficulty     string `json:"difficulty"`
	CommunityScore int    `json:"community_score"`
	Gotchas        string `json:"gotchas"`
}

// ErrNoProvider reports that no LLM credential is configured. This is
// deployment state, not a transient fault — retrying cannot fix it.
var ErrNoProvider = errors.New(
	"no LLM API key configured. Set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, " +
		"OPENROUTER_API_KEY, or PERPLEXITY_API_KEY in the environment")

// MalformedError reports that a provider replied but its output failed
// schema parsing. Possibly transient model flakiness, so it is retryable.
type MalformedError struct {
	Provider string
	Err      error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s returned malformed synthesis output: %v", e.Provider, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Synthesizer is a single LLM provider capable of completing a prompt.
type Synthesizer interface {
	Name() string
	// Available reports whether this provider has a usable credential.
	Available() bool
	// Complete sends the prompt and returns the provider's raw text reply.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Dispatcher selects a provider and runs the synthesis prompt contract.
type Dispatcher struct {
	providers []Synthesizer
	log       *logrus.Logger
}

// NewDispatcher creates a Dispatcher over explicit providers in priority
// order. Use DefaultProviders for the standard set.
func NewDispatcher(log *logrus.Logger, providers ...Synthesizer) *Dispatcher {
	return &Dispatcher{providers: providers, log: log}
}

// Active returns the name of the provider that would be used, or ""
// when none is configured.
func (d *Dispatcher) Active() string {
	if p := d.pick(); p != nil {
		return p.Name()
	}
	return ""
}

// Supported lists all provider names in priority order.
func (d *Dispatcher) Supported() []string {
	names := make([]string, len(d.providers))
	for i, p := range d.providers {
		names[i] = p.Name()
	}
	return names
}

// pick returns the first provider with a usable credential.
func (d *Dispatcher) pick() Synthesizer {
	for _, p := range d.providers {
		if p.Available() {
			return p
		}
	}
	return nil
}

// Synthesize sends the aggregated results to the chosen provider and
// parses its reply into 3-5 findings. Returns ErrNoProvider without any
// network call when no credential is configured, and a *MalformedError
// when the reply fails schema parsing.
func (d *Dispatcher) Synthesize(ctx context.Context, results sources.Aggregated, q query.SearchQuery) ([]Finding, error) {
	provider := d.pick()
	if provider == nil {
		return nil, ErrNoProvider
	}

	prompt, err := buildPrompt(results, q)
	if err != nil {
		return nil, fmt.Errorf("building synthesis prompt: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	d.log.WithField("provider", provider.Name()).Debug("synthesizing findings")
	raw, err := provider.Complete(cctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s synthesis call: %w", provider.Name(), err)
	}

	var parsed struct {
		Findings []Finding `json:"findings"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, &MalformedError{Provider: provider.Name(), Err: err}
	}
	return parsed.Findings, nil
}

// buildPrompt renders the fixed prompt contract: query context, the raw
// aggregated hits, and the exact output schema the provider must return.
func buildPrompt(results sources.Aggregated, q query.SearchQuery) (string, error) {
	rawResults, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("You are a technical research assistant analyzing community solutions.\n\n")
	fmt.Fprintf(&sb, "Query: %s\n", q.Topic)
	fmt.Fprintf(&sb, "Language: %s\n", q.Language)
	if q.Goal != "" {
		fmt.Fprintf(&sb, "Goal: %s\n", q.Goal)
	}
	if q.CurrentSetup != "" {
		fmt.Fprintf(&sb, "Current Setup: %s\n", q.CurrentSetup)
	}

	sb.WriteString("\nSearch Results:\n")
	sb.Write(rawResults)
	sb.WriteString(`

Analyze these search results and extract 3-5 actionable recommendations. For each recommendation:

1. **Problem**: What specific problem does this solve (quote real users)
2. **Solution**: Step-by-step implementation with working code examples
3. **Benefit**: Measurable improvements (performance, simplicity, reliability)
4. **Evidence**: GitHub stars, Stack Overflow votes, community adoption
5. **Difficulty**: Easy/Medium/Hard
6. **Gotchas**: Edge cases and warnings from the community

Return ONLY valid JSON with this structure (no markdown, no backticks):
{
  "findings": [
    {
      "title": "Short descriptive title",
      "problem": "Problem description with user quotes",
      "solution": "Detailed solution with code",
      "benefit": "Measurable benefits",
      "evidence": "Community validation",
      "difficulty": "Easy|Medium|Hard",
      "community_score": 85,
      "gotchas": "Important warnings"
    }
  ]
}
`)
	return sb.String(), nil
}

// stripFences removes incidental markdown code-fence wrapping that some
// providers add despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
