// Package build stages the UI sources into the layout of a UI bundle.
//
// Staging concatenates the numbered site scripts into js/site.js, inlines
// CSS @import rules, copies fonts, images, helpers, layouts and partials,
// and copies static files to the bundle root. Outside preview mode CSS
// and JavaScript are minified.
package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
	"golang.org/x/sync/errgroup"

	"github.com/fredrikaverpil/uibundle/pk"
)

// Media types registered on the minifier.
const (
	mediaCSS = "text/css"
	mediaJS  = "application/javascript"
)

// SiteScript is the concatenation of the numbered js/<nn>-*.js sources.
const SiteScript = "js/site.js"

var (
	numberedScript = regexp.MustCompile(`^\d+-.*\.js$`)
	importRule     = regexp.MustCompile(`@import\s+(?:url\(\s*)?["']?([^"')\s;]+)["']?\s*\)?([^;]*);`)
)

// copied globs are staged unchanged at the same relative path.
var copied = []string{
	"font/*.{ttf,woff,woff2}",
	"img/**/*.{gif,ico,jpg,png,svg}",
	"helpers/*.js",
	"layouts/*.hbs",
	"partials/*.hbs",
}

// Build returns a runnable that stages src into dest. Both paths are
// relative to the project root.
func Build(src, dest string, preview bool) pk.Runnable {
	return pk.Do(func(ctx context.Context) error {
		s := newStager(ctx, src, dest, !preview)
		return s.stage(ctx)
	})
}

type stager struct {
	root   string
	src    string // absolute
	dest   string // absolute
	srcFS  fs.FS
	minify *minify.M // nil in preview mode
}

func newStager(ctx context.Context, src, dest string, minified bool) *stager {
	s := &stager{
		root: pk.RootFromContext(ctx),
		src:  pk.FromRoot(ctx, src),
		dest: pk.FromRoot(ctx, dest),
	}
	s.srcFS = os.DirFS(s.src)
	if minified {
		m := minify.New()
		m.AddFunc(mediaCSS, css.Minify)
		m.AddFunc(mediaJS, js.Minify)
		s.minify = m
	}
	return s
}

func (s *stager) stage(ctx context.Context) error {
	if _, err := os.Stat(s.src); err != nil {
		return fmt.Errorf("source dir: %w", err)
	}

	var g errgroup.Group
	g.Go(s.uiModel)
	g.Go(s.siteScript)
	g.Go(s.vendorScripts)
	g.Go(s.stylesheets)
	g.Go(s.assets)
	g.Go(s.static)
	if err := g.Wait(); err != nil {
		return err
	}
	pk.Logger(ctx).Debug().Str("dest", s.dest).Msg("staged UI assets")
	return nil
}

func (s *stager) uiModel() error {
	if !pk.Exists(filepath.Join(s.src, "ui.yml")) {
		return nil
	}
	return s.copy("ui.yml", "ui.yml")
}

func (s *stager) siteScript() error {
	files, err := pk.GlobFS(s.srcFS, "js/*.js")
	if err != nil {
		return err
	}
	var parts []string
	for _, f := range files {
		if !numberedScript.MatchString(path.Base(f)) {
			continue
		}
		data, err := fs.ReadFile(s.srcFS, f)
		if err != nil {
			return err
		}
		parts = append(parts, string(data))
	}
	if len(parts) == 0 {
		return nil
	}
	return s.write(SiteScript, mediaJS, []byte(strings.Join(parts, "\n")))
}

// vendorScripts copies js/vendor/*.js; prebuilt *.min.js files lose the
// .min infix and are never minified again.
func (s *stager) vendorScripts() error {
	files, err := pk.GlobFS(s.srcFS, "js/vendor/*.js")
	if err != nil {
		return err
	}
	for _, f := range files {
		if name, ok := strings.CutSuffix(f, ".min.js"); ok {
			if err := s.copy(f, name+".js"); err != nil {
				return err
			}
			continue
		}
		data, err := fs.ReadFile(s.srcFS, f)
		if err != nil {
			return err
		}
		if err := s.write(f, mediaJS, data); err != nil {
			return err
		}
	}
	return nil
}

func (s *stager) stylesheets() error {
	files, err := pk.GlobFS(s.srcFS, "css/site.css", "css/vendor/*.css")
	if err != nil {
		return err
	}
	for _, f := range files {
		data, err := s.inlineImports(f, map[string]bool{})
		if err != nil {
			return err
		}
		if err := s.write(f, mediaCSS, data); err != nil {
			return err
		}
	}
	return nil
}

// inlineImports replaces local @import rules in the stylesheet at name
// with the imported content. Imports resolve relative to the importing
// file, then against the project node_modules. Remote imports and imports
// with media queries are kept.
func (s *stager) inlineImports(name string, seen map[string]bool) ([]byte, error) {
	if seen[name] {
		return nil, fmt.Errorf("%s: circular @import", name)
	}
	seen[name] = true
	defer delete(seen, name)

	data, err := s.readStylesheet(name)
	if err != nil {
		return nil, err
	}

	var inlineErr error
	out := importRule.ReplaceAllFunc(data, func(rule []byte) []byte {
		if inlineErr != nil {
			return rule
		}
		m := importRule.FindSubmatch(rule)
		target, media := string(m[1]), strings.TrimSpace(string(m[2]))
		if media != "" || isRemote(target) {
			return rule
		}
		resolved, err := s.resolveImport(name, target)
		if err != nil {
			inlineErr = err
			return rule
		}
		content, err := s.inlineImports(resolved, seen)
		if err != nil {
			inlineErr = err
			return rule
		}
		return content
	})
	if inlineErr != nil {
		return nil, inlineErr
	}
	return out, nil
}

// readStylesheet reads a source-relative name, or an absolute path for
// stylesheets found in node_modules.
func (s *stager) readStylesheet(name string) ([]byte, error) {
	if filepath.IsAbs(name) {
		return os.ReadFile(name)
	}
	return fs.ReadFile(s.srcFS, name)
}

func (s *stager) resolveImport(from, target string) (string, error) {
	if !filepath.IsAbs(from) {
		local := path.Join(path.Dir(from), target)
		if _, err := fs.Stat(s.srcFS, local); err == nil {
			return local, nil
		}
	} else {
		local := filepath.Join(filepath.Dir(from), filepath.FromSlash(target))
		if pk.Exists(local) {
			return local, nil
		}
	}
	module := filepath.Join(s.root, "node_modules", filepath.FromSlash(target))
	if pk.Exists(module) {
		return module, nil
	}
	return "", fmt.Errorf("%s: cannot resolve @import %q", from, target)
}

func isRemote(target string) bool {
	return strings.HasPrefix(target, "//") || strings.Contains(target, "://")
}

func (s *stager) assets() error {
	files, err := pk.GlobFS(s.srcFS, copied...)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.copy(f, f); err != nil {
			return err
		}
	}
	return nil
}

// static copies static/** to the bundle root, dotfiles included. Editor
// backups ending in "~" are skipped.
func (s *stager) static() error {
	files, err := pk.GlobFS(s.srcFS, "static/**")
	if err != nil {
		return err
	}
	for _, f := range files {
		if strings.HasSuffix(f, "~") {
			continue
		}
		if err := s.copy(f, strings.TrimPrefix(f, "static/")); err != nil {
			return err
		}
	}
	return nil
}

func (s *stager) copy(from, to string) error {
	return pk.CopyFile(filepath.Join(s.src, filepath.FromSlash(from)), filepath.Join(s.dest, filepath.FromSlash(to)))
}

func (s *stager) write(to, mediatype string, data []byte) error {
	if s.minify != nil {
		out, err := s.minify.Bytes(mediatype, data)
		if err != nil {
			return fmt.Errorf("minify %s: %w", to, err)
		}
		data = out
	}
	return pk.WriteFile(filepath.Join(s.dest, filepath.FromSlash(to)), data)
}
