package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fredrikaverpil/uibundle/pk"
)

var sources = map[string]string{
	"ui.yml":                      "static_files: [.nojekyll]\n",
	"js/01-nav.js":                "var nav = 1\n",
	"js/02-on-this-page.js":       "var toc = 2\n",
	"js/10-copy.js":               "var copy = 10\n",
	"js/helpers.js":               "ignored()\n",
	"js/vendor/highlight.js":      "function highlight (el) {\n  return el\n}\n",
	"js/vendor/docsearch.min.js":  "!function(){}();",
	"css/site.css":                "@import \"base.css\";\n@import url('vendor/print.css') print;\n.nav {\n  color: red;\n}\n",
	"css/base.css":                "@import \"typeface-roboto/index.css\";\nhtml {\n  margin: 0;\n}\n",
	"css/vendor/docsearch.css":    ".ds {\n  display: none;\n}\n",
	"font/roboto.woff2":           "font",
	"font/README.md":              "not a font",
	"img/icons/menu.svg":          "<svg/>",
	"helpers/eq.js":               "module.exports = (a, b) => a === b\n",
	"layouts/default.hbs":         "<html>{{> body}}</html>",
	"partials/body.hbs":           "<body></body>",
	"static/.nojekyll":            "",
	"static/img/favicon.ico":      "ico",
	"static/robots.txt~":          "backup",
	"static/static-readme.txt":    "static",
	"unlisted/file.txt":           "not staged",
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range sources {
		if err := pk.WriteFile(filepath.Join(root, "src", filepath.FromSlash(name)), []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	roboto := filepath.Join(root, "node_modules", "typeface-roboto", "index.css")
	if err := pk.WriteFile(roboto, []byte("@font-face {\n  font-family: Roboto;\n}\n")); err != nil {
		t.Fatal(err)
	}
	return root
}

func runBuild(t *testing.T, root string, preview bool) {
	t.Helper()
	ctx := pk.ContextWithRoot(context.Background(), root)
	ctx = pk.ContextWithOutput(ctx, pk.StdOutput())
	if err := pk.Run(ctx, Build("src", "public/_", preview)); err != nil {
		t.Fatal(err)
	}
}

func readStaged(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "public", "_", filepath.FromSlash(name)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBuild_Preview(t *testing.T) {
	root := writeProject(t)
	runBuild(t, root, true)

	if got, want := readStaged(t, root, SiteScript), "var nav = 1\n\nvar toc = 2\n\nvar copy = 10\n"; got != want {
		t.Errorf("site.js = %q, want %q", got, want)
	}
	if got := readStaged(t, root, "js/vendor/highlight.js"); got != sources["js/vendor/highlight.js"] {
		t.Errorf("expected readable vendor script in preview mode, got %q", got)
	}
	if got := readStaged(t, root, "js/vendor/docsearch.js"); got != sources["js/vendor/docsearch.min.js"] {
		t.Errorf("expected .min.js copied without .min, got %q", got)
	}

	css := readStaged(t, root, "css/site.css")
	for _, want := range []string{"font-family: Roboto", "margin: 0", "color: red", "@import url('vendor/print.css') print;"} {
		if !strings.Contains(css, want) {
			t.Errorf("site.css missing %q:\n%s", want, css)
		}
	}
	if strings.Contains(css, `@import "base.css"`) {
		t.Errorf("expected local import to be inlined:\n%s", css)
	}
}

func TestBuild_Layout(t *testing.T) {
	root := writeProject(t)
	runBuild(t, root, true)

	staged := []string{
		"ui.yml",
		"css/vendor/docsearch.css",
		"font/roboto.woff2",
		"img/icons/menu.svg",
		"helpers/eq.js",
		"layouts/default.hbs",
		"partials/body.hbs",
		".nojekyll",
		"img/favicon.ico",
		"static-readme.txt",
	}
	for _, name := range staged {
		if _, err := os.Stat(filepath.Join(root, "public", "_", filepath.FromSlash(name))); err != nil {
			t.Errorf("expected %s to be staged: %v", name, err)
		}
	}

	skipped := []string{
		"font/README.md",
		"js/helpers.js",
		"js/01-nav.js",
		"js/vendor/docsearch.min.js",
		"robots.txt~",
		"static/robots.txt~",
		"unlisted/file.txt",
		"css/base.css",
	}
	for _, name := range skipped {
		if _, err := os.Stat(filepath.Join(root, "public", "_", filepath.FromSlash(name))); !os.IsNotExist(err) {
			t.Errorf("expected %s not to be staged", name)
		}
	}
}

func TestBuild_Minified(t *testing.T) {
	root := writeProject(t)
	runBuild(t, root, false)

	css := readStaged(t, root, "css/vendor/docsearch.css")
	if css != ".ds{display:none}" {
		t.Errorf("expected minified css, got %q", css)
	}

	js := readStaged(t, root, "js/vendor/highlight.js")
	if len(js) >= len(sources["js/vendor/highlight.js"]) || strings.Contains(js, "\n  ") {
		t.Errorf("expected minified js, got %q", js)
	}

	if got := readStaged(t, root, "js/vendor/docsearch.js"); got != sources["js/vendor/docsearch.min.js"] {
		t.Errorf("expected prebuilt script untouched, got %q", got)
	}
}

func TestBuild_UnresolvedImport(t *testing.T) {
	root := t.TempDir()
	if err := pk.WriteFile(filepath.Join(root, "src", "css", "site.css"), []byte(`@import "missing.css";`)); err != nil {
		t.Fatal(err)
	}
	ctx := pk.ContextWithRoot(context.Background(), root)
	ctx = pk.ContextWithOutput(ctx, pk.StdOutput())

	err := pk.Run(ctx, Build("src", "public/_", true))
	if err == nil || !strings.Contains(err.Error(), `"missing.css"`) {
		t.Errorf("expected unresolved import error, got %v", err)
	}
}

func TestBuild_CircularImport(t *testing.T) {
	root := t.TempDir()
	for name, content := range map[string]string{
		"css/site.css": `@import "a.css";`,
		"css/a.css":    `@import "site.css";`,
	} {
		if err := pk.WriteFile(filepath.Join(root, "src", filepath.FromSlash(name)), []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	ctx := pk.ContextWithRoot(context.Background(), root)
	ctx = pk.ContextWithOutput(ctx, pk.StdOutput())

	err := pk.Run(ctx, Build("src", "public/_", true))
	if err == nil || !strings.Contains(err.Error(), "circular") {
		t.Errorf("expected circular import error, got %v", err)
	}
}

func TestBuild_MissingSource(t *testing.T) {
	ctx := pk.ContextWithRoot(context.Background(), t.TempDir())
	ctx = pk.ContextWithOutput(ctx, pk.StdOutput())
	if err := pk.Run(ctx, Build("src", "public/_", true)); err == nil {
		t.Fatal("expected error for missing source dir")
	}
}
