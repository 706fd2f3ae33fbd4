// Package research runs the full search flow: validation, rate limiting,
// caching, source aggregation, LLM synthesis, and rendering, with retries
// around the fallible middle.
package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HendryAvila/scout/internal/cache"
	"github.com/HendryAvila/scout/internal/history"
	"github.com/HendryAvila/scout/internal/query"
	"github.com/HendryAvila/scout/internal/ratelimit"
	"github.com/HendryAvila/scout/internal/render"
	"github.com/HendryAvila/scout/internal/sources"
	"github.com/HendryAvila/scout/internal/synthesis"
)

// Input is the raw tool request before validation.
type Input struct {
	Language     string
	Topic        string
	Goal         string
	CurrentSetup string
	Format       string
}

// Searcher aggregates hits across community backends.
type Searcher interface {
	Search(ctx context.Context, queryText, language string) sources.Aggregated
}

// Synthesizer turns aggregated hits into findings.
type Synthesizer interface {
	Synthesize(ctx context.Context, results sources.Aggregated, q query.SearchQuery) ([]synthesis.Finding, error)
	Active() string
}

// Recorder persists completed searches. Implemented by *history.Store.
type Recorder interface {
	Add(rec history.Record) error
}

// Orchestrator owns one search flow end to end.
type Orchestrator struct {
	limiter ratelimit.Limiter
	cache   cache.Store
	sources Searcher
	synth   Synthesizer
	retry   RetryPolicy
	history Recorder // nil when the history store is unavailable
	log     *logrus.Logger
}

// New wires an Orchestrator. history may be nil.
func New(limiter ratelimit.Limiter, store cache.Store, searcher Searcher, synth Synthesizer, retry RetryPolicy, recorder Recorder, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		limiter: limiter,
		cache:   store,
		sources: searcher,
		synth:   synth,
		retry:   retry,
		history: recorder,
		log:     log,
	}
}

// Search runs the flow and always returns a payload string the client
// can parse, never an error: failures are rendered into the payload.
func (o *Orchestrator) Search(ctx context.Context, in Input) string {
	started := time.Now()

	q, err := query.New(in.Language, in.Topic, in.Goal, in.CurrentSetup, in.Format)
	if err != nil {
		return render.ErrorPayload(err.Error())
	}

	if !o.limiter.Admit("community_search") {
		o.log.WithField("topic", q.Topic).Warn("rate limit exceeded")
		o.record(q, started, "rate_limited", 0, 0, false)
		return render.ErrorPayload("Rate limit exceeded. Maximum 10 requests per minute. Please wait and try again.")
	}

	key := cache.Key(q)
	if payload, ok := o.cache.Get(key); ok {
		o.log.WithField("topic", q.Topic).Debug("cache hit")
		o.record(q, started, "ok", 0, 0, true)
		return payload
	}

	payload, outcome := o.search(ctx, q, key)
	o.record(q, started, outcome.name, outcome.totalSources, outcome.findings, false)
	return payload
}

type searchOutcome struct {
	name         string
	totalSources int
	findings     int
}

// search runs the retryable part of the flow: aggregate, synthesize,
// render. Terminal conditions (no results, no provider) short-circuit
// the retry loop.
func (o *Orchestrator) search(ctx context.Context, q query.SearchQuery, key string) (string, searchOutcome) {
	var lastErr error
	for attempt := 0; attempt < o.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			o.log.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"error":   lastErr,
			}).Warn("retrying search")
			if err := o.retry.wait(ctx, attempt-1); err != nil {
				break
			}
		}

		results := o.sources.Search(ctx, q.SearchTerms(), q.Language)
		total := results.Total()
		if total == 0 {
			payload := render.ErrorPayload(fmt.Sprintf(
				"No results found for %q in %s. Try different search terms or a more common topic.",
				q.Topic, q.Language))
			o.cache.Put(key, payload)
			return payload, searchOutcome{name: "no_results"}
		}

		findings, err := o.synth.Synthesize(ctx, results, q)
		if err != nil {
			if errors.Is(err, synthesis.ErrNoProvider) {
				// Deployment state, not a transient fault. Not cached.
				return render.ErrorPayload(err.Error()), searchOutcome{name: "error", totalSources: total}
			}
			lastErr = err
			continue
		}

		payload, err := render.Render(q, results, findings)
		if err != nil {
			lastErr = err
			continue
		}

		o.cache.Put(key, payload)
		return payload, searchOutcome{name: "ok", totalSources: total, findings: len(findings)}
	}

	return render.ErrorPayload(fmt.Sprintf("Search failed after %d attempts: %v", o.retry.MaxAttempts, lastErr)),
		searchOutcome{name: "error"}
}

// record logs the search to the history store when one is configured.
func (o *Orchestrator) record(q query.SearchQuery, started time.Time, outcome string, totalSources, findings int, cacheHit bool) {
	if o.history == nil {
		return
	}
	rec := history.Record{
		Language:     q.Language,
		Topic:        q.Topic,
		Outcome:      outcome,
		Provider:     o.synth.Active(),
		TotalSources: totalSources,
		Findings:     findings,
		DurationMS:   time.Since(started).Milliseconds(),
		CacheHit:     cacheHit,
	}
	if err := o.history.Add(rec); err != nil {
		o.log.WithError(err).Warn("recording search history")
	}
}
