// Package format rewrites JavaScript sources in place with prettier.
package format

import (
	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tasks/lint"
	"github.com/fredrikaverpil/uibundle/tools/prettier"
)

// JS formats the files matching globs.
func JS(globs ...string) pk.Runnable {
	return lint.OnFiles(prettier.Write, globs...)
}
