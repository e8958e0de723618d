package pk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// Output holds stdout and stderr writers for task output.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
}

// StdOutput returns an Output that writes to os.Stdout and os.Stderr.
func StdOutput() *Output {
	return &Output{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// outputKey is the context key for the task output.
type outputKey struct{}

// ContextWithOutput returns a new context carrying out.
func ContextWithOutput(ctx context.Context, out *Output) context.Context {
	return context.WithValue(ctx, outputKey{}, out)
}

// OutputFromContext returns the Output from the context,
// falling back to StdOutput.
func OutputFromContext(ctx context.Context) *Output {
	if out, ok := ctx.Value(outputKey{}).(*Output); ok && out != nil {
		return out
	}
	return StdOutput()
}

// Printf writes formatted output to the context stdout.
func Printf(ctx context.Context, format string, a ...any) {
	_, _ = fmt.Fprintf(OutputFromContext(ctx).Stdout, format, a...)
}

// Println writes a line to the context stdout.
func Println(ctx context.Context, a ...any) {
	_, _ = fmt.Fprintln(OutputFromContext(ctx).Stdout, a...)
}

// bufferedOutput captures output per-goroutine for parallel execution.
// Flushes to parent Output on completion.
type bufferedOutput struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	parent *Output
}

// newBufferedOutput creates a new buffered output that will flush to parent.
func newBufferedOutput(parent *Output) *bufferedOutput {
	return &bufferedOutput{
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
		parent: parent,
	}
}

// Output returns an Output that writes to the internal buffers.
func (b *bufferedOutput) Output() *Output {
	return &Output{
		Stdout: b.stdout,
		Stderr: b.stderr,
	}
}

// Flush writes all buffered content to the parent output.
// This should be called with external synchronization when used in parallel.
func (b *bufferedOutput) Flush() {
	if b.stdout.Len() > 0 {
		_, _ = b.parent.Stdout.Write(b.stdout.Bytes())
	}
	if b.stderr.Len() > 0 {
		_, _ = b.parent.Stderr.Write(b.stderr.Bytes())
	}
}
