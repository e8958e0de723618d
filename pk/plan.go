package pk

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateTask is returned when two different tasks share a name.
var ErrDuplicateTask = errors.New("duplicate task name")

// Registry holds every task reachable from the registered roots, keyed by
// name. Names are unique: registering a different task under a taken name fails.
type Registry struct {
	byName map[string]*Task
	order  []*Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Task)}
}

// Register adds t and all tasks nested in its body.
// Registering the same task pointer twice is a no-op.
func (r *Registry) Register(t *Task) error {
	return r.walk(t)
}

// walk recursively traverses the Runnable tree.
func (r *Registry) walk(run Runnable) error {
	switch v := run.(type) {
	case *Task:
		if existing, ok := r.byName[v.name]; ok {
			if existing != v {
				return fmt.Errorf("%w: %q", ErrDuplicateTask, v.name)
			}
			return nil
		}
		if v.name == "" {
			return errors.New("task name must not be empty")
		}
		r.byName[v.name] = v
		r.order = append(r.order, v)
		return r.walk(v.body)

	case *serial:
		for _, child := range v.runnables {
			if err := r.walk(child); err != nil {
				return err
			}
		}

	case *parallel:
		for _, child := range v.runnables {
			if err := r.walk(child); err != nil {
				return err
			}
		}

	default:
		// Leaf runnables carry no tasks.
	}
	return nil
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (*Task, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tasks returns all registered tasks in registration order.
func (r *Registry) Tasks() []*Task {
	return append([]*Task(nil), r.order...)
}

// Exports is the public face of a task graph: the tasks a CLI exposes,
// plus an optional default.
type Exports struct {
	def   *Task
	tasks []*Task
}

// Export publishes tasks as entry points. When the first task occurs again
// later in the list it becomes the default entry and is also exported under
// its own name; otherwise there is no default. Repeats are collapsed.
func Export(tasks ...*Task) Exports {
	var e Exports
	if len(tasks) == 0 {
		return e
	}
	first := tasks[0]
	for _, t := range tasks[1:] {
		if t == first {
			e.def = first
			tasks = tasks[1:]
			break
		}
	}
	seen := make(map[*Task]bool, len(tasks))
	for _, t := range tasks {
		if seen[t] {
			continue
		}
		seen[t] = true
		e.tasks = append(e.tasks, t)
	}
	return e
}

// Default returns the default task, or nil.
func (e Exports) Default() *Task {
	return e.def
}

// DefaultUsage describes the default entry the way listings show aliases.
func (e Exports) DefaultUsage() string {
	if e.def == nil {
		return ""
	}
	return "=> " + e.def.name
}

// Tasks returns the exported tasks in export order.
func (e Exports) Tasks() []*Task {
	return append([]*Task(nil), e.tasks...)
}

// Names returns the exported task names, sorted.
func (e Exports) Names() []string {
	names := make([]string, 0, len(e.tasks))
	for _, t := range e.tasks {
		names = append(names, t.name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the exported task with the given name.
// The name "default" resolves to the default task.
func (e Exports) Lookup(name string) (*Task, bool) {
	if name == "default" && e.def != nil {
		return e.def, true
	}
	for _, t := range e.tasks {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}
