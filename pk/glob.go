package pk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob expands patterns against the project root and returns the matching
// files as sorted, de-duplicated, slash-separated root-relative paths.
// Patterns support "**" and "{a,b}" alternation.
func Glob(ctx context.Context, patterns ...string) ([]string, error) {
	return GlobFS(os.DirFS(RootFromContext(ctx)), patterns...)
}

// GlobFS is Glob over an arbitrary file system.
func GlobFS(fsys fs.FS, patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
