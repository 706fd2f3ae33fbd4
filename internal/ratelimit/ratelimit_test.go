package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func restoreClock() { timeNow = time.Now }

func TestAdmit_AllowsUpToBudget(t *testing.T) {
	defer restoreClock()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return at }

	l := New()
	for i := 0; i < MaxCalls; i++ {
		if !l.Admit("community_search") {
			t.Fatalf("call %d should be admitted", i+1)
		}
	}
	if l.Admit("community_search") {
		t.Errorf("call %d should be rejected", MaxCalls+1)
	}
}

func TestAdmit_RejectionDoesNotConsumeBudget(t *testing.T) {
	defer restoreClock()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	timeNow = func() time.Time { return now }

	l := New()
	for i := 0; i < MaxCalls; i++ {
		l.Admit("op")
	}
	// Hammer the limiter while saturated; none of these record timestamps.
	for i := 0; i < 5; i++ {
		l.Admit("op")
	}

	// Once the original ten age out, a full budget is available again.
	now = start.Add(Window)
	for i := 0; i < MaxCalls; i++ {
		if !l.Admit("op") {
			t.Fatalf("call %d after window should be admitted", i+1)
		}
	}
}

func TestAdmit_ResetsAfterWindow(t *testing.T) {
	defer restoreClock()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	timeNow = func() time.Time { return now }

	l := New()
	for i := 0; i < MaxCalls; i++ {
		l.Admit("op")
	}
	if l.Admit("op") {
		t.Fatal("saturated window should reject")
	}

	now = start.Add(Window - time.Second)
	if l.Admit("op") {
		t.Error("still inside the window, should reject")
	}

	now = start.Add(Window)
	if !l.Admit("op") {
		t.Error("window elapsed since first call, should admit")
	}
}

func TestAdmit_SlidesContinuously(t *testing.T) {
	defer restoreClock()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	timeNow = func() time.Time { return now }

	l := New()
	// Five calls at t=0, five at t=30s.
	for i := 0; i < 5; i++ {
		l.Admit("op")
	}
	now = start.Add(30 * time.Second)
	for i := 0; i < 5; i++ {
		l.Admit("op")
	}
	if l.Admit("op") {
		t.Fatal("ten calls in the trailing window, should reject")
	}

	// At t=60s the first batch ages out, freeing exactly five slots.
	now = start.Add(Window)
	for i := 0; i < 5; i++ {
		if !l.Admit("op") {
			t.Fatalf("slot %d should have been freed", i+1)
		}
	}
	if l.Admit("op") {
		t.Error("second batch still in window, should reject")
	}
}

func TestAdmit_OperationsAreIndependent(t *testing.T) {
	defer restoreClock()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return at }

	l := New()
	for i := 0; i < MaxCalls; i++ {
		l.Admit("community_search")
	}
	if !l.Admit("get_server_context") {
		t.Error("a saturated operation must not affect another operation's budget")
	}
}

func TestAdmit_ConcurrentCallersShareBudget(t *testing.T) {
	defer restoreClock()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return at }

	l := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("op") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != MaxCalls {
		t.Errorf("admitted = %d, want exactly %d across all goroutines", admitted, MaxCalls)
	}
}
