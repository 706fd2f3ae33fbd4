// Package sources queries the community search backends and aggregates
// their hits.
//
// Each backend is an independent HTTP client normalizing its own wire
// format into Result. The aggregator fans one query out to all backends
// concurrently and joins on completion; a failing backend contributes an
// empty list and must never disturb the others.
package sources

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Fixed backend names, in presentation order.
const (
	StackOverflow = "stackoverflow"
	GitHub        = "github"
	Reddit        = "reddit"
	HackerNews    = "hackernews"
)

// Names lists all backends in presentation order.
var Names = []string{StackOverflow, GitHub, Reddit, HackerNews}

// RequestTimeout bounds each individual backend call.
const RequestTimeout = 30 * time.Second

// snippetLimit caps the snippet carried per hit.
const snippetLimit = 500

// Result is one normalized hit from any backend.
type Result struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Score    int    `json:"score,omitempty"`
	Comments int    `json:"comments,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// Aggregated maps backend name to that backend's ordered hits.
// Every backend name is present, possibly with an empty list.
type Aggregated map[string][]Result

// Total counts hits across all backends.
func (a Aggregated) Total() int {
	n := 0
	for _, results := range a {
		n += len(results)
	}
	return n
}

// Counts returns the per-backend hit counts.
func (a Aggregated) Counts() map[string]int {
	counts := make(map[string]int, len(a))
	for name, results := range a {
		counts[name] = len(results)
	}
	return counts
}

// Backend is a single community search source.
type Backend interface {
	Name() string
	Search(ctx context.Context, queryText, language string) ([]Result, error)
}

// Aggregator fans a query out to all backends concurrently.
type Aggregator struct {
	backends []Backend
	log      *logrus.Logger
}

// NewAggregator creates an Aggregator over the four standard backends,
// sharing one HTTP client.
func NewAggregator(client *http.Client, log *logrus.Logger) *Aggregator {
	return &Aggregator{
		backends: []Backend{
			newStackOverflow(client),
			newGitHub(client),
			newReddit(client),
			newHackerNews(client),
		},
		log: log,
	}
}

// NewAggregatorWith creates an Aggregator over explicit backends.
// Used by tests to substitute fakes.
func NewAggregatorWith(log *logrus.Logger, backends ...Backend) *Aggregator {
	return &Aggregator{backends: backends, log: log}
}

// Search issues one request per backend concurrently and blocks until all
// complete or time out. Errors, timeouts, and panics from a backend are
// absorbed into an empty list for that backend.
func (a *Aggregator) Search(ctx context.Context, queryText, language string) Aggregated {
	results := make(Aggregated, len(a.backends))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, b := range a.backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			hits := a.searchOne(ctx, b, queryText, language)
			mu.Lock()
			results[b.Name()] = hits
			mu.Unlock()
		}(b)
	}
	wg.Wait()

	return results
}

// searchOne runs a single backend under its own timeout. A panicking
// backend must not take down the fan-out.
func (a *Aggregator) searchOne(ctx context.Context, b Backend, queryText, language string) (hits []Result) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithField("source", b.Name()).Warnf("backend panicked: %v", r)
			hits = []Result{}
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	found, err := b.Search(cctx, queryText, language)
	if err != nil {
		a.log.WithField("source", b.Name()).WithError(err).Warn("backend search failed")
		return []Result{}
	}
	if found == nil {
		found = []Result{}
	}
	return found
}

// truncateSnippet clips free-text bodies to the per-hit snippet cap.
func truncateSnippet(s string) string {
	if len(s) > snippetLimit {
		return s[:snippetLimit]
	}
	return s
}
