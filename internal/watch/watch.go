// Package watch reports batches of file changes under a set of directory
// trees, coalescing bursts of events into one notification.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period after the last event before a batch is
// reported.
const DefaultDelay = 100 * time.Millisecond

// ErrClosed is returned when using a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Watcher watches directory trees. New subdirectories are picked up as
// they appear.
type Watcher struct {
	fsw   *fsnotify.Watcher
	delay time.Duration

	mu     sync.Mutex
	closed bool
}

// New creates a watcher reporting batches after delay of inactivity.
func New(delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsw: fsw, delay: delay}, nil
}

// AddRecursive watches dir and every directory below it. Missing
// directories are skipped.
func (w *Watcher) AddRecursive(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && Ignored(p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// Run delivers batches of changed paths to onChange until ctx is done or
// the watcher is closed. onChange runs on the calling goroutine; events
// arriving meanwhile are batched for the next call. Watch errors go to
// onError when set.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string), onError func(error)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if Ignored(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.AddRecursive(ev.Name); err != nil && onError != nil {
						onError(err)
					}
				}
			}
			pending[ev.Name] = true
			timer.Reset(w.delay)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			onChange(paths)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

// Ignored reports whether path is editor or VCS noise: backup files ending
// in "~", swap files, emacs lock files and .git directories.
func Ignored(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"),
		base == ".git":
		return true
	}
	return false
}
