// Package tasks declares the UI bundle task graph and its public entry
// points.
package tasks

import (
	"context"
	"fmt"

	"github.com/fredrikaverpil/uibundle"
	"github.com/fredrikaverpil/uibundle/internal/livereload"
	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tasks/build"
	"github.com/fredrikaverpil/uibundle/tasks/clean"
	"github.com/fredrikaverpil/uibundle/tasks/format"
	"github.com/fredrikaverpil/uibundle/tasks/lint"
	"github.com/fredrikaverpil/uibundle/tasks/pack"
	"github.com/fredrikaverpil/uibundle/tasks/preview"
)

// ID identifies a task of the graph.
type ID int

// Task identifiers, in declaration order.
const (
	Clean ID = iota
	LintCSS
	LintJS
	Lint
	Format
	Build
	BundleBuild
	BundlePack
	Bundle
	Pack
	PreviewBuildPages
	PreviewBuild
	PreviewServe
	Preview

	numIDs
)

var names = [numIDs]string{
	Clean:             "clean",
	LintCSS:           "lint:css",
	LintJS:            "lint:js",
	Lint:              "lint",
	Format:            "format",
	Build:             "build",
	BundleBuild:       "bundle:build",
	BundlePack:        "bundle:pack",
	Bundle:            "bundle",
	Pack:              "pack",
	PreviewBuildPages: "preview:build-pages",
	PreviewBuild:      "preview:build",
	PreviewServe:      "preview:serve",
	Preview:           "preview",
}

// String returns the task name.
func (id ID) String() string {
	if id < 0 || id >= numIDs {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return names[id]
}

// IDs returns every task identifier.
func IDs() []ID {
	ids := make([]ID, numIDs)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Graph holds the tasks built from a Config.
type Graph struct {
	cfg      uibundle.Config
	tasks    [numIDs]*pk.Task
	registry *pk.Registry
	exports  pk.Exports
	hub      *livereload.Hub // nil unless live reload is on
}

// New builds the task graph for cfg and checks that task names are unique.
func New(cfg uibundle.Config) (*Graph, error) {
	g := &Graph{cfg: cfg, registry: pk.NewRegistry()}
	if cfg.Server.LiveReload {
		g.hub = livereload.NewHub()
	}
	p := cfg.Paths

	g.define(Clean, "Clean files and folders generated by build",
		clean.Remove(p.Build, p.PreviewDest))
	g.define(LintCSS, "Lint the CSS source files using stylelint (standard config)",
		lint.CSS(cfg.Globs.CSS))
	g.define(LintJS, "Lint the JavaScript source files using eslint (JavaScript Standard Style)",
		lint.JS(cfg.Globs.JS...))
	g.define(Lint, "Lint the CSS and JavaScript source files",
		pk.Parallel(g.tasks[LintCSS], g.tasks[LintJS]))
	g.define(Format, "Format the JavaScript source files using prettify (JavaScript Standard Style)",
		format.JS(cfg.Globs.JS...))
	g.define(Build, "Build and stage the UI assets for bundling",
		build.Build(p.Src, p.Dest, cfg.Preview))
	g.define(BundleBuild, "",
		pk.Serial(g.tasks[Clean], g.tasks[Build]))
	g.define(BundlePack, "Create a bundle of the staged UI assets for publishing",
		pack.Pack(p.Dest, p.Build, cfg.BundleName, g.bundleHint))
	g.define(Bundle, "Clean, lint, build, and bundle the UI for publishing",
		pk.Serial(g.tasks[BundleBuild], g.tasks[BundlePack]))
	g.define(Pack, "(deprecated; use bundle instead)",
		pk.Serial(g.tasks[Bundle]))
	g.define(PreviewBuildPages, "",
		preview.BuildPages(preview.Pages{
			Src:         p.Src,
			PreviewSrc:  p.PreviewSrc,
			PreviewDest: p.PreviewDest,
			Env:         cfg.Env,
			Reload:      g.reload,
		}))
	g.define(PreviewBuild, "Process and stage the UI assets and generate pages for the preview",
		pk.Parallel(g.tasks[Build], g.tasks[PreviewBuildPages]))
	g.define(PreviewServe, "",
		preview.Serve(p.PreviewDest, cfg.Server,
			preview.Watch(cfg.Globs.All, g.tasks[PreviewBuild]),
			g.serveOpts()...))
	g.define(Preview, "Generate a preview site and launch a server to view it",
		pk.Serial(g.tasks[PreviewBuild], g.tasks[PreviewServe]))

	for _, t := range g.tasks {
		if err := g.registry.Register(t); err != nil {
			return nil, err
		}
	}

	g.exports = pk.Export(
		g.tasks[Bundle],
		g.tasks[Clean],
		g.tasks[Lint],
		g.tasks[Format],
		g.tasks[Build],
		g.tasks[Bundle],
		g.tasks[BundlePack],
		g.tasks[Preview],
		g.tasks[PreviewBuild],
		g.tasks[Pack],
	)
	return g, nil
}

func (g *Graph) define(id ID, usage string, body pk.Runnable) {
	g.tasks[id] = pk.NewTask(id.String(), usage, body)
}

// Task returns the task for id.
func (g *Graph) Task(id ID) *pk.Task {
	return g.tasks[id]
}

// Registry returns every task of the graph, keyed by name.
func (g *Graph) Registry() *pk.Registry {
	return g.registry
}

// Exports returns the public entry points; bundle is the default.
func (g *Graph) Exports() pk.Exports {
	return g.exports
}

// bundleHint prints the option that points Antora at the new bundle.
func (g *Graph) bundleHint(ctx context.Context, bundlePath string) error {
	if g.cfg.CI {
		return nil
	}
	pk.Logger(ctx).Info().Msgf("Antora option: --ui-bundle-url=%s", bundlePath)
	return nil
}

func (g *Graph) reload(context.Context) {
	if g.hub != nil {
		g.hub.Reload("index.html")
	}
}

func (g *Graph) serveOpts() []preview.ServeOpt {
	if g.hub == nil {
		return nil
	}
	return []preview.ServeOpt{preview.WithLiveReload(g.hub)}
}
