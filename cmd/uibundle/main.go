// Command uibundle builds, bundles and previews an Antora UI.
//
// Usage:
//
//	uibundle [flags] [tasks...]
//
// Without tasks the bundle task runs. Run with -h to list the tasks.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goyek/x/boot"

	"github.com/fredrikaverpil/uibundle"
	"github.com/fredrikaverpil/uibundle/tasks"
)

func main() {
	cfg := uibundle.Load(os.Args[1:], os.Environ())

	graph, err := tasks.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	graph.Define(tasks.CLI{
		Stderr:  os.Stderr,
		Verbose: verbose,
	})
	boot.Main()
}

// verbose reads the -v flag registered by boot.
func verbose() bool {
	f := flag.Lookup("v")
	return f != nil && f.Value.String() == "true"
}
