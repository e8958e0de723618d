//go:build !unix

package pk

import (
	"os"
	"os/exec"

	"golang.org/x/term"
)

// setGracefulShutdown is a no-op on non-Unix platforms; cmd.Cancel keeps
// its default of killing the process.
func setGracefulShutdown(_ *exec.Cmd) {}

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
