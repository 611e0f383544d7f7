package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestSlidingWindow_Basic(t *testing.T) {
	window := NewSlidingWindowCounter(time.Minute)

	if got := window.Count(); got != 0 {
		t.Errorf("Expected empty window, got count %d", got)
	}

	window.AddNow()
	window.AddNow()
	window.AddNow()

	if got := window.Count(); got != 3 {
		t.Errorf("Expected count 3, got %d", got)
	}
}

func TestSlidingWindow_Eviction(t *testing.T) {
	clk := newFakeClock()
	window := newSlidingWindowCounter(time.Minute, clk.now)

	window.Add(clk.now())
	clk.advance(30 * time.Second)
	window.Add(clk.now())

	if got := window.Count(); got != 2 {
		t.Errorf("Expected count 2, got %d", got)
	}

	// First entry ages out, second survives
	clk.advance(31 * time.Second)
	if got := window.Count(); got != 1 {
		t.Errorf("Expected count 1 after eviction, got %d", got)
	}

	clk.advance(30 * time.Second)
	if got := window.Count(); got != 0 {
		t.Errorf("Expected empty window, got %d", got)
	}
}

func TestSlidingWindow_BoundaryRetained(t *testing.T) {
	clk := newFakeClock()
	window := newSlidingWindowCounter(time.Minute, clk.now)

	window.Add(clk.now())

	// An entry exactly at now-window is still inside the window
	clk.advance(time.Minute)
	if got := window.Count(); got != 1 {
		t.Errorf("Expected entry at window boundary to be retained, got %d", got)
	}

	clk.advance(time.Nanosecond)
	if got := window.Count(); got != 0 {
		t.Errorf("Expected entry past boundary to be evicted, got %d", got)
	}
}

func TestSlidingWindow_EvictionIsPermanent(t *testing.T) {
	clk := newFakeClock()
	window := newSlidingWindowCounter(time.Second, clk.now)

	for i := 0; i < 5; i++ {
		window.Add(clk.now())
	}
	clk.advance(2 * time.Second)
	window.Add(clk.now())

	if got := window.Count(); got != 1 {
		t.Errorf("Expected only the fresh entry, got %d", got)
	}
	// Backing slice shrank along with the count
	if got := len(window.timestamps); got != 1 {
		t.Errorf("Expected evicted timestamps to be released, got %d retained", got)
	}
}

func TestSlidingWindow_Concurrent(t *testing.T) {
	window := NewSlidingWindowCounter(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			window.AddNow()
			window.Count()
		}()
	}
	wg.Wait()

	if got := window.Count(); got != 100 {
		t.Errorf("Expected 100 entries, got %d", got)
	}
}
