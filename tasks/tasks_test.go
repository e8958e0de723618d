package tasks_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goyek/goyek/v3"

	"github.com/fredrikaverpil/uibundle"
	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tasks"
)

var exported = []string{
	"build",
	"bundle",
	"bundle:pack",
	"clean",
	"format",
	"lint",
	"pack",
	"preview",
	"preview:build",
}

func newGraph(t *testing.T, args []string, environ ...string) *tasks.Graph {
	t.Helper()
	g, err := tasks.New(uibundle.Load(args, environ))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNew_Exports(t *testing.T) {
	g := newGraph(t, nil)
	exports := g.Exports()

	if got := exports.Names(); !slices.Equal(got, exported) {
		t.Errorf("exported names = %v, want %v", got, exported)
	}
	for _, name := range exported {
		if _, ok := exports.Lookup(name); !ok {
			t.Errorf("exported task %q cannot be resolved", name)
		}
	}
	for _, hidden := range []string{"lint:css", "lint:js", "bundle:build", "preview:build-pages", "preview:serve"} {
		if _, ok := exports.Lookup(hidden); ok {
			t.Errorf("expected %q not to be exported", hidden)
		}
	}

	if def := exports.Default(); def == nil || def.Name() != "bundle" {
		t.Fatalf("expected bundle as default, got %v", def)
	}
	if got := exports.DefaultUsage(); got != "=> bundle" {
		t.Errorf("DefaultUsage() = %q", got)
	}
}

func TestNew_UniqueNames(t *testing.T) {
	g := newGraph(t, nil)

	seen := map[string]bool{}
	for _, id := range tasks.IDs() {
		name := id.String()
		if seen[name] {
			t.Errorf("duplicate name %q", name)
		}
		seen[name] = true

		task := g.Task(id)
		if task == nil || task.Name() != name {
			t.Errorf("task for %v = %v", id, task)
			continue
		}
		if registered, ok := g.Registry().Lookup(name); !ok || registered != task {
			t.Errorf("task %q not registered", name)
		}
	}
	if len(g.Registry().Tasks()) != len(tasks.IDs()) {
		t.Errorf("registry holds %d tasks, want %d", len(g.Registry().Tasks()), len(tasks.IDs()))
	}
}

func TestID_String(t *testing.T) {
	if got := tasks.PreviewBuildPages.String(); got != "preview:build-pages" {
		t.Errorf("String() = %q", got)
	}
	if got := tasks.ID(99).String(); got != "ID(99)" {
		t.Errorf("String() = %q", got)
	}
}

func TestNew_Composition(t *testing.T) {
	g := newGraph(t, nil)

	tests := []struct {
		id   tasks.ID
		want string
	}{
		{tasks.Lint, "<parallel> lint:css, lint:js"},
		{tasks.BundleBuild, "<series> clean, build"},
		{tasks.Bundle, "<series> bundle:build, bundle:pack"},
		{tasks.Pack, "<series> bundle"},
		{tasks.PreviewBuild, "<parallel> build, preview:build-pages"},
		{tasks.Preview, "<series> preview:build, preview:serve"},
	}
	for _, tc := range tests {
		if got := pk.Describe(g.Task(tc.id).Body()); got != tc.want {
			t.Errorf("%v body = %q, want %q", tc.id, got, tc.want)
		}
	}

	// Tasks without a description fall back to their composition.
	if got := g.Task(tasks.BundleBuild).Usage(); got != "<series> clean, build" {
		t.Errorf("bundle:build usage = %q", got)
	}
	if got := g.Task(tasks.Pack).Usage(); got != "(deprecated; use bundle instead)" {
		t.Errorf("pack usage = %q", got)
	}
}

func writeSources(t *testing.T, root string) {
	t.Helper()
	files := map[string]string{
		"src/css/site.css":        ".nav {\n  color: red;\n}\n",
		"src/js/01-nav.js":        "var nav = 1\n",
		"src/layouts/default.hbs": "<html>{{{page.contents}}}</html>",
		"public/stale.html":       "old",
		"build/stale.zip":         "old",
	}
	for name, content := range files {
		if err := pk.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
}

func runBundle(t *testing.T, environ ...string) (root string, stderr string) {
	t.Helper()
	root = t.TempDir()
	writeSources(t, root)

	g := newGraph(t, []string{"bundle"}, environ...)
	var errBuf bytes.Buffer
	ctx := pk.ContextWithRoot(context.Background(), root)
	ctx = pk.ContextWithOutput(ctx, &pk.Output{Stdout: &bytes.Buffer{}, Stderr: &errBuf})

	if err := pk.Run(ctx, g.Exports().Default()); err != nil {
		t.Fatal(err)
	}
	return root, errBuf.String()
}

func TestBundle(t *testing.T) {
	root, stderr := runBundle(t)

	bundle := filepath.Join(root, "build", "ui-bundle.zip")
	if _, err := os.Stat(bundle); err != nil {
		t.Fatalf("expected bundle: %v", err)
	}
	for _, stale := range []string{"public/stale.html", "build/stale.zip"} {
		if _, err := os.Stat(filepath.Join(root, stale)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be cleaned", stale)
		}
	}
	css, err := os.ReadFile(filepath.Join(root, "public", "_", "css", "site.css"))
	if err != nil {
		t.Fatal(err)
	}
	if string(css) != ".nav{color:red}" {
		t.Errorf("expected minified css outside preview, got %q", css)
	}
	if !strings.Contains(stderr, "Antora option: --ui-bundle-url="+bundle) {
		t.Errorf("expected bundle hint, got %q", stderr)
	}
}

func TestBundle_CI(t *testing.T) {
	_, stderr := runBundle(t, "CI=true")
	if strings.Contains(stderr, "Antora option") {
		t.Errorf("expected no bundle hint in CI, got %q", stderr)
	}
}

func TestGraph_Define(t *testing.T) {
	g := newGraph(t, nil)
	defined := g.Define(tasks.CLI{Root: t.TempDir(), Stderr: &bytes.Buffer{}})
	t.Cleanup(func() {
		goyek.SetDefault(nil)
		for _, dt := range defined {
			goyek.Undefine(dt)
		}
	})

	var names []string
	for _, dt := range defined {
		names = append(names, dt.Name())
		if dt.Usage() == "" {
			t.Errorf("goyek task %q has no usage", dt.Name())
		}
	}
	slices.Sort(names)
	if !slices.Equal(names, exported) {
		t.Errorf("defined goyek tasks = %v, want %v", names, exported)
	}
}
