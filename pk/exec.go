package pk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// WaitDelay is the time to wait after sending SIGINT before sending SIGKILL.
const WaitDelay = 5 * time.Second

// DefaultNoticePatterns are matched case-insensitively against captured
// command output to flag warnings that did not fail the command.
var DefaultNoticePatterns = []string{
	"warning",
	"deprecat",
	"notice",
}

var (
	colorEnvOnce sync.Once
	colorEnvVars []string
)

// colorForceEnvVars are the environment variables set to force color output.
var colorForceEnvVars = []string{
	"FORCE_COLOR=1",       // Node.js, chalk, many modern tools
	"CLICOLOR_FORCE=1",    // BSD/macOS convention
	"COLORTERM=truecolor", // Indicates color support
}

// initColorEnv detects if stdout is a TTY and prepares env vars to force colors.
func initColorEnv() {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return
	}
	if isTerminal(os.Stdout) {
		colorEnvVars = colorForceEnvVars
	}
}

// Command builds an exec.Cmd rooted at the context project root, wired to
// the context output and terminated gracefully on cancellation.
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	colorEnvOnce.Do(initColorEnv)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = RootFromContext(ctx)
	cmd.Env = append(os.Environ(), colorEnvVars...)
	cmd.WaitDelay = WaitDelay
	setGracefulShutdown(cmd)

	out := OutputFromContext(ctx)
	cmd.Stdout = out.Stdout
	cmd.Stderr = out.Stderr
	return cmd
}

// Exec executes a command in the project root.
//
// If verbose mode is enabled, command output is streamed to context output.
// Otherwise, output is captured and only shown on error, or on success
// when it contains warning-like lines.
//
// Commands are terminated gracefully: SIGINT first, then SIGKILL after WaitDelay.
func Exec(ctx context.Context, name string, args ...string) error {
	cmd := Command(ctx, name, args...)

	if Verbose(ctx) {
		return cmd.Run()
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w\n%s", name, strings.Join(args, " "), err, buf.String())
	}

	if containsNotice(buf.String(), noticePatternsFromContext(ctx)) {
		if tracker := executionTrackerFromContext(ctx); tracker != nil {
			tracker.markWarning()
		}
		_, _ = io.Copy(OutputFromContext(ctx).Stdout, &buf)
	}
	return nil
}

// containsNotice reports whether output contains any of the patterns,
// ignoring case.
func containsNotice(output string, patterns []string) bool {
	if output == "" || len(patterns) == 0 {
		return false
	}
	lower := strings.ToLower(output)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
