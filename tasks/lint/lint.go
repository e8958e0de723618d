// Package lint checks the CSS and JavaScript sources.
package lint

import (
	"context"

	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tools/eslint"
	"github.com/fredrikaverpil/uibundle/tools/stylelint"
)

// FilesFunc runs a tool on root-relative files.
type FilesFunc func(ctx context.Context, files ...string) error

// CSS lints the files matching glob with stylelint.
func CSS(glob string) pk.Runnable {
	return OnFiles(stylelint.Exec, glob)
}

// JS lints the files matching globs with eslint.
func JS(globs ...string) pk.Runnable {
	return OnFiles(eslint.Exec, globs...)
}

// OnFiles expands globs and calls fn with the matches. Nothing runs when
// no file matches.
func OnFiles(fn FilesFunc, globs ...string) pk.Runnable {
	return pk.Do(func(ctx context.Context) error {
		files, err := pk.Glob(ctx, globs...)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			pk.Logger(ctx).Debug().Strs("globs", globs).Msg("no files to check")
			return nil
		}
		return fn(ctx, files...)
	})
}
