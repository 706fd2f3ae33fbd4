package cache

import (
	"testing"
	"time"

	"github.com/HendryAvila/scout/internal/query"
)

func frozenClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func restoreClock() { timeNow = time.Now }

func testQuery(t *testing.T, format string) query.SearchQuery {
	t.Helper()
	q, err := query.New("Python", "FastAPI background task queue with Redis", "async processing", "FastAPI with SQLAlchemy", format)
	if err != nil {
		t.Fatalf("building test query: %v", err)
	}
	return q
}

// --- Key ---

func TestKey_Deterministic(t *testing.T) {
	q := testQuery(t, "json")
	if Key(q) != Key(q) {
		t.Error("identical queries must derive identical keys")
	}
}

func TestKey_FormatChangesKey(t *testing.T) {
	jsonQ := testQuery(t, "json")
	mdQ := testQuery(t, "markdown")
	if Key(jsonQ) == Key(mdQ) {
		t.Error("queries differing only in format must not share a cache slot")
	}
}

func TestKey_TopicChangesKey(t *testing.T) {
	a := testQuery(t, "json")
	b, _ := query.New("Python", "Celery task routing with RabbitMQ", "async processing", "FastAPI with SQLAlchemy", "json")
	if Key(a) == Key(b) {
		t.Error("different topics must derive different keys")
	}
}

// --- Get / Put ---

func TestGet_MissOnEmptyStore(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get(Key(testQuery(t, "json"))); ok {
		t.Error("empty store should miss")
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	key := Key(testQuery(t, "json"))
	s.Put(key, `{"findings":[]}`)

	got, ok := s.Get(key)
	if !ok {
		t.Fatal("expected hit immediately after Put")
	}
	if got != `{"findings":[]}` {
		t.Errorf("payload = %q, want the exact stored string", got)
	}
}

func TestPut_ReplacesEntry(t *testing.T) {
	s := NewMemoryStore()
	s.Put("k", "first")
	s.Put("k", "second")

	got, ok := s.Get("k")
	if !ok || got != "second" {
		t.Errorf("Get = (%q, %v), want replacement payload", got, ok)
	}
}

func TestGet_ExpiresAfterTTL(t *testing.T) {
	defer restoreClock()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := NewMemoryStore()
	timeNow = frozenClock(start)
	s.Put("k", "payload")

	// One second before the TTL boundary: still a hit.
	timeNow = frozenClock(start.Add(TTL - time.Second))
	if _, ok := s.Get("k"); !ok {
		t.Fatal("entry should still be live just before TTL")
	}

	// At the boundary: miss, and the entry is deleted.
	timeNow = frozenClock(start.Add(TTL))
	if _, ok := s.Get("k"); ok {
		t.Fatal("entry should expire at TTL")
	}
	if s.Len() != 0 {
		t.Errorf("expired entry should be deleted on read, still holding %d", s.Len())
	}
}

func TestGet_ExpiryIsPerEntry(t *testing.T) {
	defer restoreClock()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := NewMemoryStore()
	timeNow = frozenClock(start)
	s.Put("old", "a")
	timeNow = frozenClock(start.Add(30 * time.Minute))
	s.Put("new", "b")

	timeNow = frozenClock(start.Add(TTL))
	if _, ok := s.Get("old"); ok {
		t.Error("old entry should have expired")
	}
	if _, ok := s.Get("new"); !ok {
		t.Error("new entry should still be live")
	}
}
