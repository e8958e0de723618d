package pk

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Runnable represents a unit of execution in the task graph.
// The run method is intentionally unexported to keep execution internals private.
type Runnable interface {
	run(ctx context.Context) error
}

// Do creates a Runnable that executes a function.
//
//	pk.Do(func(ctx context.Context) error {
//	    return pk.Exec(ctx, "stylelint", "src/css/site.css")
//	})
func Do(fn func(ctx context.Context) error) Runnable {
	return &doRunnable{fn: fn}
}

// Serial composes multiple runnables to execute sequentially.
// Execution stops on the first error.
func Serial(runnables ...Runnable) Runnable {
	return &serial{runnables: runnables}
}

// Parallel composes multiple runnables to execute concurrently.
// All runnables are started simultaneously, and execution waits for all to complete.
// Returns the first error encountered, or nil if all succeed.
func Parallel(runnables ...Runnable) Runnable {
	return &parallel{runnables: runnables}
}

// doRunnable wraps a function as a Runnable.
type doRunnable struct {
	fn func(ctx context.Context) error
}

func (d *doRunnable) run(ctx context.Context) error {
	return d.fn(ctx)
}

// serial is the internal implementation of sequential composition.
type serial struct {
	runnables []Runnable
}

func (s *serial) run(ctx context.Context) error {
	for _, r := range s.runnables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// parallel is the internal implementation of concurrent composition.
type parallel struct {
	runnables []Runnable
}

func (p *parallel) run(ctx context.Context) error {
	if len(p.runnables) == 0 {
		return nil
	}

	// Check if context is already canceled.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Single item? Run directly without buffering.
	if len(p.runnables) == 1 {
		return p.runnables[0].run(ctx)
	}

	// Multiple items: use errgroup and buffered output.
	// Deduplication is handled by Task.run().
	parentOut := OutputFromContext(ctx)
	buffers := make([]*bufferedOutput, len(p.runnables))
	for i := range p.runnables {
		buffers[i] = newBufferedOutput(parentOut)
	}
	var flushMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for i, r := range p.runnables {
		g.Go(func() error {
			childCtx := ContextWithOutput(gCtx, buffers[i].Output())
			err := r.run(childCtx)

			// First to complete flushes first.
			flushMu.Lock()
			buffers[i].Flush()
			flushMu.Unlock()

			return err
		})
	}
	return g.Wait()
}

// Describe renders the composition of r the way task listings show
// undocumented tasks, e.g. "<series> clean, build".
func Describe(r Runnable) string {
	switch v := r.(type) {
	case *Task:
		return v.name
	case *serial:
		return "<series> " + describeAll(v.runnables)
	case *parallel:
		return "<parallel> " + describeAll(v.runnables)
	default:
		return "<anonymous>"
	}
}

func describeAll(rs []Runnable) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		switch r.(type) {
		case *serial, *parallel:
			parts = append(parts, "("+Describe(r)+")")
		default:
			parts = append(parts, Describe(r))
		}
	}
	return strings.Join(parts, ", ")
}
