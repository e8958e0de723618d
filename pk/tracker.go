package pk

import (
	"context"
	"sort"
	"sync"
)

// trackerKey is the context key for the execution tracker.
// Used internally for task deduplication.
type trackerKey struct{}

// executionTracker tracks which tasks have already executed.
// It is safe for concurrent use.
type executionTracker struct {
	mu          sync.Mutex
	done        map[string]bool
	hadWarnings bool
}

// newExecutionTracker creates a new execution tracker.
func newExecutionTracker() *executionTracker {
	return &executionTracker{
		done: make(map[string]bool),
	}
}

// markDone records that a task has executed.
// Returns true if it was already done (should skip), false if first time.
func (t *executionTracker) markDone(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done[name] {
		return true
	}
	t.done[name] = true
	return false
}

// executed returns the names of all tasks that have run, sorted.
func (t *executionTracker) executed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]string, 0, len(t.done))
	for name := range t.done {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// markWarning records that a warning was detected during execution.
func (t *executionTracker) markWarning() {
	t.mu.Lock()
	t.hadWarnings = true
	t.mu.Unlock()
}

// warnings returns true if any warnings were detected.
func (t *executionTracker) warnings() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hadWarnings
}

// withExecutionTracker returns a new context with the given tracker set.
func withExecutionTracker(ctx context.Context, t *executionTracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// executionTrackerFromContext returns the execution tracker from the context.
// Returns nil if no tracker is set.
func executionTrackerFromContext(ctx context.Context) *executionTracker {
	if t, ok := ctx.Value(trackerKey{}).(*executionTracker); ok {
		return t
	}
	return nil
}

// Session is a handle on one invocation's execution state. Runs started
// from a context returned by Context share deduplication and warnings.
type Session struct {
	tracker *executionTracker
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{tracker: newExecutionTracker()}
}

// Context returns ctx bound to the session.
func (s *Session) Context(ctx context.Context) context.Context {
	return withExecutionTracker(ctx, s.tracker)
}

// Executed returns the sorted names of tasks that ran in this session.
func (s *Session) Executed() []string {
	return s.tracker.executed()
}

// Warnings reports whether any command printed warning-like output.
func (s *Session) Warnings() bool {
	return s.tracker.warnings()
}
