package tasks

import (
	"context"
	"io"
	"os"

	"github.com/goyek/goyek/v3"

	"github.com/fredrikaverpil/uibundle/pk"
)

// CLI configures how exported tasks run under goyek.
type CLI struct {
	// Root is the project root; the working directory when empty.
	Root string

	// Stderr receives log lines. goyek only shows task output of failed
	// tasks unless -v is given, so logs bypass it.
	Stderr io.Writer

	// Verbose reports whether command output should be streamed.
	Verbose func() bool
}

// Define registers every exported task as a goyek task and sets the
// default export as the goyek default. Each goyek action is a separate
// invocation of the graph.
func (g *Graph) Define(cli CLI) []*goyek.DefinedTask {
	if cli.Stderr == nil {
		cli.Stderr = os.Stderr
	}

	var defined []*goyek.DefinedTask
	for _, t := range g.exports.Tasks() {
		dt := goyek.Define(goyek.Task{
			Name:  t.Name(),
			Usage: t.Usage(),
			Action: func(a *goyek.A) {
				if err := pk.Run(cli.context(a.Context(), a.Output()), t); err != nil {
					a.Fatal(err)
				}
			},
		})
		if t == g.exports.Default() {
			goyek.SetDefault(dt)
		}
		defined = append(defined, dt)
	}
	return defined
}

func (cli CLI) context(ctx context.Context, out io.Writer) context.Context {
	ctx = pk.ContextWithOutput(ctx, &pk.Output{Stdout: out, Stderr: cli.Stderr})
	if cli.Root != "" {
		ctx = pk.ContextWithRoot(ctx, cli.Root)
	}
	ctx = pk.ContextWithVerbose(ctx, cli.Verbose != nil && cli.Verbose())
	return pk.ContextWithNoticePatterns(ctx, pk.DefaultNoticePatterns...)
}
