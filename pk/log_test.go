package pk

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
)

func TestLogger_WritesTimestampedLines(t *testing.T) {
	var stderr bytes.Buffer
	ctx := ContextWithOutput(context.Background(), &Output{Stdout: &bytes.Buffer{}, Stderr: &stderr})

	Logger(ctx).Info().Msg("Antora option: --ui-bundle-url=/work/build/ui-bundle.zip")

	line := stderr.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2} `).MatchString(line) {
		t.Errorf("expected leading HH:MM:SS timestamp, got %q", line)
	}
	if !strings.Contains(line, "--ui-bundle-url=/work/build/ui-bundle.zip") {
		t.Errorf("expected message in output, got %q", line)
	}
}

func TestLogger_DebugNeedsVerbose(t *testing.T) {
	var stderr bytes.Buffer
	ctx := ContextWithOutput(context.Background(), &Output{Stdout: &bytes.Buffer{}, Stderr: &stderr})

	Logger(ctx).Debug().Msg("hidden")
	if stderr.Len() != 0 {
		t.Errorf("expected debug to be dropped, got %q", stderr.String())
	}

	Logger(ContextWithVerbose(ctx, true)).Debug().Msg("shown")
	if !strings.Contains(stderr.String(), "shown") {
		t.Errorf("expected debug line in verbose mode, got %q", stderr.String())
	}
}
