package pk

import (
	"context"
	"os"
	"path/filepath"
)

// ═══════════════════════════════════════════════════════════════════════════════
// Context Keys
// ═══════════════════════════════════════════════════════════════════════════════

// contextKey is the type for context keys in this package.
type contextKey int

const (
	// rootKey is the context key for the project root directory.
	rootKey contextKey = iota
	// forceRunKey is the context key for forcing task execution.
	forceRunKey
	// verboseKey is the context key for verbose mode.
	verboseKey
	// noticePatternsKey is the context key for warning detection patterns.
	noticePatternsKey
)

// ═══════════════════════════════════════════════════════════════════════════════
// Context Accessors (Getters)
// ═══════════════════════════════════════════════════════════════════════════════

// RootFromContext returns the project root from the context.
// Falls back to the working directory, then ".".
func RootFromContext(ctx context.Context) string {
	if root, ok := ctx.Value(rootKey).(string); ok && root != "" {
		return root
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// Verbose returns whether verbose mode is enabled in the context.
func Verbose(ctx context.Context) bool {
	v, _ := ctx.Value(verboseKey).(bool)
	return v
}

// ForceRunFromContext returns whether forceRun is set in the context.
func ForceRunFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(forceRunKey).(bool)
	return v
}

func noticePatternsFromContext(ctx context.Context) []string {
	if p, ok := ctx.Value(noticePatternsKey).([]string); ok {
		return p
	}
	return DefaultNoticePatterns
}

// ═══════════════════════════════════════════════════════════════════════════════
// Context Modifiers (Setters)
// ═══════════════════════════════════════════════════════════════════════════════

// ContextWithRoot returns a new context with the given project root.
// Relative task paths and commands resolve against it.
//
//	ctx = pk.ContextWithRoot(ctx, "/work/ui")
//	pk.Exec(ctx, "node", "--version") // runs in /work/ui
func ContextWithRoot(ctx context.Context, root string) context.Context {
	return context.WithValue(ctx, rootKey, root)
}

// ContextWithVerbose returns a new context with verbose mode set.
func ContextWithVerbose(ctx context.Context, verbose bool) context.Context {
	return context.WithValue(ctx, verboseKey, verbose)
}

// ContextWithForceRun returns a new context with forceRun set to true.
// Tasks run under it even if they already ran in this invocation.
func ContextWithForceRun(ctx context.Context) context.Context {
	return context.WithValue(ctx, forceRunKey, true)
}

// ContextWithNoticePatterns sets the patterns used to detect warning-like
// output from commands. Pass no patterns to disable detection.
func ContextWithNoticePatterns(ctx context.Context, patterns ...string) context.Context {
	if patterns == nil {
		patterns = []string{}
	}
	return context.WithValue(ctx, noticePatternsKey, patterns)
}

// ═══════════════════════════════════════════════════════════════════════════════
// Path Helpers
// ═══════════════════════════════════════════════════════════════════════════════

// FromRoot joins elems onto the project root from the context.
// An absolute first element is returned as is.
func FromRoot(ctx context.Context, elems ...string) string {
	if len(elems) > 0 && filepath.IsAbs(elems[0]) {
		return filepath.Join(elems...)
	}
	return filepath.Join(append([]string{RootFromContext(ctx)}, elems...)...)
}

// FromCacheDir returns a path inside the .uibundle cache directory.
func FromCacheDir(ctx context.Context, elems ...string) string {
	return FromRoot(ctx, append([]string{CacheDirName}, elems...)...)
}

// FromToolsDir returns a path inside .uibundle/tools.
func FromToolsDir(ctx context.Context, elems ...string) string {
	return FromCacheDir(ctx, append([]string{"tools"}, elems...)...)
}

// CacheDirName is the directory under the project root holding installed
// tools and generated tool configuration.
const CacheDirName = ".uibundle"
