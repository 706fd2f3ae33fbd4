package synthesis

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/HendryAvila/scout/internal/query"
	"github.com/HendryAvila/scout/internal/sources"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeProvider is a canned Synthesizer.
type fakeProvider struct {
	name      string
	available bool
	reply     string
	err       error
	calls     int
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testQuery(t *testing.T) query.SearchQuery {
	t.Helper()
	q, err := query.New("Python", "FastAPI background task queue with Redis", "async processing", "FastAPI app", "json")
	if err != nil {
		t.Fatalf("building test query: %v", err)
	}
	return q
}

func testResults() sources.Aggregated {
	return sources.Aggregated{
		sources.StackOverflow: {{Title: "so", URL: "https://so/1", Score: 10, Snippet: "snippet"}},
		sources.GitHub:        {},
		sources.Reddit:        {},
		sources.HackerNews:    {},
	}
}

const validReply = `{"findings":[
	{"title":"Use arq","problem":"celery is heavy","solution":"pip install arq",
	 "benefit":"simpler","evidence":"2k stars","difficulty":"Easy","community_score":80,"gotchas":"redis only"}
]}`

// --- Provider selection ---

func TestSynthesize_NoProviderConfigured(t *testing.T) {
	d := NewDispatcher(testLogger(),
		&fakeProvider{name: "gemini"},
		&fakeProvider{name: "openai"},
	)

	_, err := d.Synthesize(context.Background(), testResults(), testQuery(t))
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
}

func TestSynthesize_PicksFirstAvailableByPriority(t *testing.T) {
	first := &fakeProvider{name: "gemini"}
	second := &fakeProvider{name: "openai", available: true, reply: validReply}
	third := &fakeProvider{name: "anthropic", available: true, reply: validReply}
	d := NewDispatcher(testLogger(), first, second, third)

	if _, err := d.Synthesize(context.Background(), testResults(), testQuery(t)); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if first.calls != 0 {
		t.Error("unconfigured provider must not be called")
	}
	if second.calls != 1 {
		t.Errorf("first available provider calls = %d, want 1", second.calls)
	}
	if third.calls != 0 {
		t.Error("lower-priority provider must not be called when a higher one is configured")
	}
}

func TestActive_ReportsChosenProvider(t *testing.T) {
	d := NewDispatcher(testLogger(),
		&fakeProvider{name: "gemini"},
		&fakeProvider{name: "openai", available: true},
	)
	if got := d.Active(); got != "openai" {
		t.Errorf("Active = %q, want openai", got)
	}
}

func TestActive_EmptyWhenUnconfigured(t *testing.T) {
	d := NewDispatcher(testLogger(), &fakeProvider{name: "gemini"})
	if got := d.Active(); got != "" {
		t.Errorf("Active = %q, want empty", got)
	}
}

func TestSupported_ListsAllInOrder(t *testing.T) {
	d := NewDispatcher(testLogger(),
		&fakeProvider{name: "gemini"},
		&fakeProvider{name: "openai"},
	)
	got := d.Supported()
	if len(got) != 2 || got[0] != "gemini" || got[1] != "openai" {
		t.Errorf("Supported = %v", got)
	}
}

func TestDefaultProviders_PriorityOrder(t *testing.T) {
	providers := DefaultProviders(nil)
	want := []string{"gemini", "openai", "anthropic", "openrouter", "perplexity"}
	if len(providers) != len(want) {
		t.Fatalf("provider count = %d, want %d", len(providers), len(want))
	}
	for i, p := range providers {
		if p.Name() != want[i] {
			t.Errorf("provider[%d] = %s, want %s", i, p.Name(), want[i])
		}
	}
}

// --- Response normalization ---

func TestSynthesize_ParsesFindings(t *testing.T) {
	d := NewDispatcher(testLogger(), &fakeProvider{name: "openai", available: true, reply: validReply})

	findings, err := d.Synthesize(context.Background(), testResults(), testQuery(t))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.Title != "Use arq" || f.Difficulty != "Easy" || f.CommunityScore != 80 {
		t.Errorf("finding fields not parsed: %+v", f)
	}
}

func TestSynthesize_StripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validReply + "\n```"
	d := NewDispatcher(testLogger(), &fakeProvider{name: "openai", available: true, reply: fenced})

	findings, err := d.Synthesize(context.Background(), testResults(), testQuery(t))
	if err != nil {
		t.Fatalf("fenced reply should still parse: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("findings = %d, want 1", len(findings))
	}
}

func TestSynthesize_MalformedReplyIsTypedError(t *testing.T) {
	d := NewDispatcher(testLogger(), &fakeProvider{name: "openai", available: true, reply: "sorry, here are my thoughts..."})

	_, err := d.Synthesize(context.Background(), testResults(), testQuery(t))
	var merr *MalformedError
	if !errors.As(err, &merr) {
		t.Fatalf("err = %v, want *MalformedError", err)
	}
	if merr.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", merr.Provider)
	}
}

func TestSynthesize_ProviderErrorIsNotMalformed(t *testing.T) {
	d := NewDispatcher(testLogger(), &fakeProvider{name: "openai", available: true, err: errors.New("connection refused")})

	_, err := d.Synthesize(context.Background(), testResults(), testQuery(t))
	if err == nil {
		t.Fatal("expected error")
	}
	var merr *MalformedError
	if errors.As(err, &merr) {
		t.Error("transport failure should not be classified as malformed output")
	}
}

// --- Prompt contract ---

func TestBuildPrompt_IncludesQueryContextAndSchema(t *testing.T) {
	prompt, err := buildPrompt(testResults(), testQuery(t))
	if err != nil {
		t.Fatalf("buildPrompt failed: %v", err)
	}
	for _, want := range []string{
		"Query: FastAPI background task queue with Redis",
		"Language: Python",
		"Goal: async processing",
		"Current Setup: FastAPI app",
		`"community_score": 85`,
		"Return ONLY valid JSON",
		"https://so/1",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_OmitsEmptyOptionalFields(t *testing.T) {
	q, _ := query.New("Go", "sync.Pool for request-scoped buffers", "", "", "json")
	prompt, err := buildPrompt(testResults(), q)
	if err != nil {
		t.Fatalf("buildPrompt failed: %v", err)
	}
	if strings.Contains(prompt, "Goal:") {
		t.Error("prompt should omit the Goal line when goal is empty")
	}
	if strings.Contains(prompt, "Current Setup:") {
		t.Error("prompt should omit the Current Setup line when setup is empty")
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                      `{"a":1}`,
		"```json\n{\"a\":1}\n```":        `{"a":1}`,
		"```\n{\"a\":1}\n```":            `{"a":1}`,
		"  \n```json\n{\"a\":1}\n```\n ": `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
