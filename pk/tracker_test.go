package pk

import (
	"context"
	"slices"
	"sync"
	"testing"
)

func TestExecutionTracker_MarkDone(t *testing.T) {
	tracker := newExecutionTracker()

	// First call should return false (not already done).
	if alreadyDone := tracker.markDone("build"); alreadyDone {
		t.Error("expected first markDone to return false")
	}

	// Second call with same task should return true (deduplicated).
	if alreadyDone := tracker.markDone("build"); !alreadyDone {
		t.Error("expected second markDone with same task to return true")
	}

	// Different task should return false.
	if alreadyDone := tracker.markDone("clean"); alreadyDone {
		t.Error("expected markDone with different task to return false")
	}
}

func TestExecutionTracker_Concurrent(t *testing.T) {
	tracker := newExecutionTracker()

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)

	// Count how many goroutines think they're first.
	var firstCount int
	var mu sync.Mutex

	for range goroutines {
		go func() {
			defer wg.Done()
			if !tracker.markDone("concurrent-task") {
				mu.Lock()
				firstCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// Exactly one goroutine should have been first.
	if firstCount != 1 {
		t.Errorf("expected exactly 1 goroutine to be first, got %d", firstCount)
	}
}

func TestExecutionTrackerContext(t *testing.T) {
	ctx := context.Background()

	if tracker := executionTrackerFromContext(ctx); tracker != nil {
		t.Error("expected nil tracker from empty context")
	}

	tracker := newExecutionTracker()
	ctx = withExecutionTracker(ctx, tracker)

	if retrieved := executionTrackerFromContext(ctx); retrieved != tracker {
		t.Error("expected to retrieve the same tracker from context")
	}
}

func TestForceRunContext(t *testing.T) {
	ctx := context.Background()

	if ForceRunFromContext(ctx) {
		t.Error("expected forceRun to be false by default")
	}

	ctx = ContextWithForceRun(ctx)
	if !ForceRunFromContext(ctx) {
		t.Error("expected forceRun to be true after ContextWithForceRun")
	}
}

func TestExecutionTracker_Executed(t *testing.T) {
	tracker := newExecutionTracker()
	tracker.markDone("preview:build")
	tracker.markDone("build")
	tracker.markDone("build")

	want := []string{"build", "preview:build"}
	if got := tracker.executed(); !slices.Equal(got, want) {
		t.Errorf("executed() = %v, want %v", got, want)
	}
}

func TestExecutionTracker_MarkWarning(t *testing.T) {
	tracker := newExecutionTracker()

	if tracker.warnings() {
		t.Error("expected no warnings initially")
	}

	tracker.markWarning()

	if !tracker.warnings() {
		t.Error("expected warnings after markWarning")
	}
}

func TestExecutionTracker_MarkWarning_Concurrent(t *testing.T) {
	tracker := newExecutionTracker()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			tracker.markWarning()
		})
	}
	wg.Wait()

	if !tracker.warnings() {
		t.Error("expected warnings after concurrent marking")
	}
}

func TestSession(t *testing.T) {
	s := NewSession()
	ctx := s.Context(ContextWithOutput(context.Background(), testOutput()))

	clean := NewTask("clean", "", Do(func(context.Context) error { return nil }))
	if err := Run(ctx, Serial(clean, clean)); err != nil {
		t.Fatal(err)
	}

	if got := s.Executed(); !slices.Equal(got, []string{"clean"}) {
		t.Errorf("Executed() = %v, want [clean]", got)
	}
	if s.Warnings() {
		t.Error("expected no warnings")
	}
}
