package sources

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeBackend returns canned hits or a canned failure.
type fakeBackend struct {
	name  string
	hits  []Result
	err   error
	panic bool
	calls int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Search(ctx context.Context, queryText, language string) ([]Result, error) {
	f.calls++
	if f.panic {
		panic("backend blew up")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func TestSearch_AllBackendsSucceed(t *testing.T) {
	a := NewAggregatorWith(testLogger(),
		&fakeBackend{name: StackOverflow, hits: []Result{{Title: "so-1"}}},
		&fakeBackend{name: GitHub, hits: []Result{{Title: "gh-1"}, {Title: "gh-2"}}},
		&fakeBackend{name: Reddit, hits: []Result{{Title: "r-1"}}},
		&fakeBackend{name: HackerNews, hits: []Result{{Title: "hn-1"}}},
	)

	agg := a.Search(context.Background(), "Go worker pools", "Go")

	if agg.Total() != 5 {
		t.Errorf("Total = %d, want 5", agg.Total())
	}
	if len(agg[GitHub]) != 2 {
		t.Errorf("github hits = %d, want 2", len(agg[GitHub]))
	}
}

func TestSearch_FailuresAreIsolated(t *testing.T) {
	a := NewAggregatorWith(testLogger(),
		&fakeBackend{name: StackOverflow, err: errors.New("boom")},
		&fakeBackend{name: GitHub, err: errors.New("boom")},
		&fakeBackend{name: Reddit, err: errors.New("boom")},
		&fakeBackend{name: HackerNews, hits: []Result{{Title: "a"}, {Title: "b"}}},
	)

	agg := a.Search(context.Background(), "query", "Go")

	if len(agg) != 4 {
		t.Fatalf("every backend must be present, got %d entries", len(agg))
	}
	if len(agg[HackerNews]) != 2 {
		t.Errorf("surviving backend hits = %d, want 2", len(agg[HackerNews]))
	}
	for _, name := range []string{StackOverflow, GitHub, Reddit} {
		hits, ok := agg[name]
		if !ok {
			t.Errorf("failed backend %s missing from results", name)
		}
		if len(hits) != 0 {
			t.Errorf("failed backend %s should have an empty list, got %d", name, len(hits))
		}
	}
}

func TestSearch_PanicIsAbsorbed(t *testing.T) {
	a := NewAggregatorWith(testLogger(),
		&fakeBackend{name: StackOverflow, panic: true},
		&fakeBackend{name: GitHub, hits: []Result{{Title: "gh"}}},
	)

	agg := a.Search(context.Background(), "query", "Go")

	if len(agg[StackOverflow]) != 0 {
		t.Error("panicking backend should yield an empty list")
	}
	if len(agg[GitHub]) != 1 {
		t.Error("panic in one backend must not disturb another")
	}
}

func TestSearch_NilHitsBecomeEmptyList(t *testing.T) {
	a := NewAggregatorWith(testLogger(),
		&fakeBackend{name: Reddit, hits: nil},
	)

	agg := a.Search(context.Background(), "query", "Go")

	if agg[Reddit] == nil {
		t.Error("a backend returning nil hits should still be an empty list")
	}
}

func TestSearch_AllBackendsCalledOnce(t *testing.T) {
	backends := []*fakeBackend{
		{name: StackOverflow},
		{name: GitHub},
		{name: Reddit},
		{name: HackerNews},
	}
	a := NewAggregatorWith(testLogger(), backends[0], backends[1], backends[2], backends[3])

	a.Search(context.Background(), "query", "Go")

	for _, b := range backends {
		if b.calls != 1 {
			t.Errorf("backend %s called %d times, want 1", b.name, b.calls)
		}
	}
}

func TestAggregated_TotalAndCounts(t *testing.T) {
	agg := Aggregated{
		StackOverflow: {{Title: "a"}, {Title: "b"}},
		GitHub:        {},
		Reddit:        {{Title: "c"}},
		HackerNews:    {},
	}
	if agg.Total() != 3 {
		t.Errorf("Total = %d, want 3", agg.Total())
	}
	counts := agg.Counts()
	if counts[StackOverflow] != 2 || counts[Reddit] != 1 || counts[GitHub] != 0 {
		t.Errorf("Counts = %v", counts)
	}
}
