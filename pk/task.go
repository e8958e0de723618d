package pk

import (
	"context"
	"fmt"
)

// Task represents a named, executable unit of work.
// Create tasks with NewTask.
type Task struct {
	name  string
	usage string
	body  Runnable
}

// NewTask creates a new task with a Runnable body.
// Use Do() to wrap a function as a Runnable.
//
// Example with function body:
//
//	var Clean = pk.NewTask("clean", "remove build output", pk.Do(func(ctx context.Context) error {
//	    return os.RemoveAll("build")
//	}))
//
// Example with composition:
//
//	var Bundle = pk.NewTask("bundle", "build and pack", pk.Serial(Build, Pack))
//
// An empty usage falls back to a description of the body composition.
func NewTask(name, usage string, body Runnable) *Task {
	return &Task{
		name:  name,
		usage: usage,
		body:  body,
	}
}

// run implements the Runnable interface.
func (t *Task) run(ctx context.Context) error {
	if t.body == nil {
		return fmt.Errorf("task %q has no implementation", t.name)
	}

	if !ForceRunFromContext(ctx) {
		if tracker := executionTrackerFromContext(ctx); tracker != nil {
			if alreadyDone := tracker.markDone(t.name); alreadyDone {
				return nil // Silent skip.
			}
		}
	}

	Printf(ctx, ":: %s\n", t.name)

	if err := t.body.run(ctx); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	return nil
}

// Name returns the task's name.
func (t *Task) Name() string {
	return t.name
}

// Usage returns the task's description, or the rendered composition when
// the task was created without one.
func (t *Task) Usage() string {
	if t.usage != "" {
		return t.usage
	}
	if t.body == nil {
		return ""
	}
	return Describe(t.body)
}

// Body returns the runnable the task executes.
func (t *Task) Body() Runnable {
	return t.body
}

// Run executes r. A fresh execution tracker is installed unless ctx already
// carries one, so each task runs at most once per invocation.
func Run(ctx context.Context, r Runnable) error {
	if r == nil {
		return nil
	}
	if executionTrackerFromContext(ctx) == nil {
		ctx = withExecutionTracker(ctx, newExecutionTracker())
	}
	return r.run(ctx)
}
