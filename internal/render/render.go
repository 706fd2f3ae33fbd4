// Package render builds the final response payload in either of the two
// supported formats and enforces the response size ceiling.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HendryAvila/scout/internal/query"
	"github.com/HendryAvila/scout/internal/sources"
	"github.com/HendryAvila/scout/internal/synthesis"
)

// CharacterLimit is the hard ceiling on any response payload.
const CharacterLimit = 25000

const truncationNotice = "\n\n[Response truncated due to size limits. Use JSON format for full data.]"

// Response is the structured (JSON) payload shape.
type Response struct {
	Language          string              `json:"language"`
	Topic             string              `json:"topic"`
	TotalSources      int                 `json:"total_sources"`
	Findings          []synthesis.Finding `json:"findings"`
	Error             string              `json:"error,omitempty"`
	SourcesSearched   map[string]int      `json:"sources_searched"`
	Truncated         bool                `json:"truncated,omitempty"`
	TruncationMessage string              `json:"truncation_message,omitempty"`
}

// Render produces the payload for the requested format, truncating when
// it would exceed CharacterLimit.
func Render(q query.SearchQuery, results sources.Aggregated, findings []synthesis.Finding) (string, error) {
	if q.Format == query.FormatStructured {
		return renderStructured(q, results, findings)
	}
	return renderReadable(q, results, findings), nil
}

// renderStructured marshals the response envelope. When the payload is
// over the limit it halves the findings (never below one), marks the
// response truncated, and re-marshals.
func renderStructured(q query.SearchQuery, results sources.Aggregated, findings []synthesis.Finding) (string, error) {
	resp := Response{
		Language:        q.Language,
		Topic:           q.Topic,
		TotalSources:    results.Total(),
		Findings:        findings,
		SourcesSearched: results.Counts(),
	}

	payload, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling response: %w", err)
	}
	if len(payload) <= CharacterLimit {
		return string(payload), nil
	}

	kept := len(findings) / 2
	if kept < 1 {
		kept = 1
	}
	resp.Findings = findings[:kept]
	resp.Truncated = true
	resp.TruncationMessage = fmt.Sprintf("Response truncated from %d to %d findings due to size limits.", len(findings), kept)

	payload, err = json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling truncated response: %w", err)
	}
	return string(payload), nil
}

// renderReadable builds the markdown report. Oversized reports are cut
// at the limit with a fixed notice appended.
func renderReadable(q query.SearchQuery, results sources.Aggregated, findings []synthesis.Finding) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Community Research: %s\n\n", q.Topic)
	fmt.Fprintf(&sb, "**Language**: %s\n", q.Language)
	if q.Goal != "" {
		fmt.Fprintf(&sb, "**Goal**: %s\n", q.Goal)
	}
	fmt.Fprintf(&sb, "\n## Found %d Recommendations\n\n", len(findings))

	for i, f := range findings {
		fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, f.Title)
		fmt.Fprintf(&sb, "**Difficulty**: %s | **Community Score**: %d/100\n\n", f.Difficulty, f.CommunityScore)
		fmt.Fprintf(&sb, "**Problem**: %s\n\n", f.Problem)
		fmt.Fprintf(&sb, "**Solution**:\n%s\n\n", f.Solution)
		fmt.Fprintf(&sb, "**Benefits**: %s\n\n", f.Benefit)
		fmt.Fprintf(&sb, "**Evidence**: %s\n\n", f.Evidence)
		if f.Gotchas != "" {
			fmt.Fprintf(&sb, "**Gotchas**: %s\n\n", f.Gotchas)
		}
	}

	sb.WriteString("## Sources Searched\n\n")
	for _, name := range sources.Names {
		fmt.Fprintf(&sb, "- %s: %d results\n", name, len(results[name]))
	}

	out := sb.String()
	if len(out) > CharacterLimit {
		out = out[:CharacterLimit-len(truncationNotice)] + truncationNotice
	}
	return out
}

// ErrorPayload renders a terminal error in a shape the caller can still
// parse: a JSON object with the message and an empty findings list.
func ErrorPayload(message string) string {
	payload, err := json.MarshalIndent(map[string]any{
		"error":    message,
		"findings": []synthesis.Finding{},
	}, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q, "findings": []}`, message)
	}
	return string(payload)
}
