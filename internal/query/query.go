// Package query defines the validated search request that drives a
// community research run.
//
// Validation happens once, at construction: a SearchQuery that exists is
// well-formed, and nothing downstream re-checks it. The vagueness gate is
// deliberately narrow — it only blocks the "one or two generic words"
// pattern so that short but specific topics still pass.
package query

import (
	"fmt"
	"strings"
)

// Field limits, matching the tool's documented contract.
const (
	MinLanguageLen = 2
	MaxLanguageLen = 50
	MinTopicLen    = 10
	MaxTopicLen    = 500
	MaxGoalLen     = 500
	MaxSetupLen    = 1000
)

// Format selects the response payload shape.
type Format string

const (
	// FormatReadable renders human-readable markdown (the default).
	FormatReadable Format = "markdown"
	// FormatStructured renders a machine-readable JSON envelope.
	FormatStructured Format = "json"
)

// SearchQuery is an immutable, validated research request.
// Construct it with New; never mutate it afterwards.
type SearchQuery struct {
	Language     string
	Topic        string
	Goal         string
	CurrentSetup string
	Format       Format
}

// SearchTerms returns the text sent to the search backends:
// language + topic, plus the goal when present.
func (q SearchQuery) SearchTerms() string {
	terms := q.Language + " " + q.Topic
	if q.Goal != "" {
		terms += " " + q.Goal
	}
	return terms
}

// ValidationError reports a rejected input field with an actionable message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// vagueTerms flags topics that are too generic to search for.
var vagueTerms = []string{
	"settings", "configuration", "config", "setup", "performance",
	"optimization", "best practices", "how to", "tutorial",
	"getting started", "basics", "help", "issue", "problem",
	"error", "debugging", "install", "installation",
}

// New validates raw user-supplied fields and returns a SearchQuery.
// All string fields are trimmed before validation. An empty format
// defaults to markdown.
func New(language, topic, goal, setup, format string) (SearchQuery, error) {
	language = strings.TrimSpace(language)
	topic = strings.TrimSpace(topic)
	goal = strings.TrimSpace(goal)
	setup = strings.TrimSpace(setup)

	if len(language) < MinLanguageLen || len(language) > MaxLanguageLen {
		return SearchQuery{}, &ValidationError{
			Field:   "language",
			Message: fmt.Sprintf("must be between %d and %d characters", MinLanguageLen, MaxLanguageLen),
		}
	}
	if len(topic) < MinTopicLen || len(topic) > MaxTopicLen {
		return SearchQuery{}, &ValidationError{
			Field:   "topic",
			Message: fmt.Sprintf("must be between %d and %d characters", MinTopicLen, MaxTopicLen),
		}
	}
	if err := checkSpecificity(topic); err != nil {
		return SearchQuery{}, err
	}
	if len(goal) > MaxGoalLen {
		return SearchQuery{}, &ValidationError{
			Field:   "goal",
			Message: fmt.Sprintf("must be at most %d characters", MaxGoalLen),
		}
	}
	if len(setup) > MaxSetupLen {
		return SearchQuery{}, &ValidationError{
			Field:   "current_setup",
			Message: fmt.Sprintf("must be at most %d characters", MaxSetupLen),
		}
	}

	f, err := parseFormat(format)
	if err != nil {
		return SearchQuery{}, err
	}

	return SearchQuery{
		Language:     language,
		Topic:        topic,
		Goal:         goal,
		CurrentSetup: setup,
		Format:       f,
	}, nil
}

// checkSpecificity rejects topics of at most two words when any word
// matches the vague-term list. Longer topics always pass — this is a
// heuristic gate, not a classifier.
func checkSpecificity(topic string) error {
	lower := strings.ToLower(topic)
	if len(strings.Fields(lower)) > 2 {
		return nil
	}
	for _, term := range vagueTerms {
		if strings.Contains(lower, term) {
			return &ValidationError{
				Field: "topic",
				Message: fmt.Sprintf(
					"%q is too vague. Be more specific! "+
						"Instead of 'settings', say 'GUI settings dialog with tabs and save/load buttons'. "+
						"Instead of 'performance', say 'reduce Docker image size with multi-stage builds'. "+
						"Include specific technologies, libraries, or patterns you're interested in.",
					topic,
				),
			}
		}
	}
	return nil
}

func parseFormat(format string) (Format, error) {
	switch Format(strings.TrimSpace(format)) {
	case "":
		return FormatReadable, nil
	case FormatReadable:
		return FormatReadable, nil
	case FormatStructured:
		return FormatStructured, nil
	default:
		return "", &ValidationError{
			Field:   "response_format",
			Message: fmt.Sprintf("%q is not supported (valid: markdown, json)", format),
		}
	}
}
