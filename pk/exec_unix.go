//go:build unix

package pk

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/term"
)

// setGracefulShutdown makes context cancellation send SIGINT, so node tools
// get a chance to clean up before WaitDelay escalates to SIGKILL.
func setGracefulShutdown(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGINT)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
