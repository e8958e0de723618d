// Package preview generates the preview site from sample AsciiDoc content
// and serves it with optional live reload.
package preview

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/bytesparadise/libasciidoc"
	"github.com/bytesparadise/libasciidoc/pkg/configuration"
	"gopkg.in/yaml.v3"

	"github.com/fredrikaverpil/uibundle/pk"
)

// ModelFile holds the base UI model in the preview source dir.
const ModelFile = "ui-model.yml"

// DefaultLayout is used by pages without a page-layout attribute.
const DefaultLayout = "default"

// ErrUnknownLayout is returned when a page asks for a layout that src does
// not provide.
var ErrUnknownLayout = errors.New("unknown layout")

var headerAttribute = regexp.MustCompile(`^:([\w][\w-]*):(?:\s+(.*))?$`)

// ReloadFunc is called after the pages have been written.
type ReloadFunc func(ctx context.Context)

// Pages configures page generation.
type Pages struct {
	Src         string            // UI sources holding layouts/ and partials/
	PreviewSrc  string            // sample content and ui-model.yml
	PreviewDest string            // output dir
	Env         map[string]string // exposed to templates as env
	Reload      ReloadFunc        // optional
}

// BuildPages returns a runnable generating the preview pages.
func BuildPages(p Pages) pk.Runnable {
	return pk.Do(func(ctx context.Context) error {
		return p.build(ctx)
	})
}

func (p Pages) build(ctx context.Context) error {
	previewSrc := pk.FromRoot(ctx, p.PreviewSrc)
	previewDest := pk.FromRoot(ctx, p.PreviewDest)
	srcFS := os.DirFS(pk.FromRoot(ctx, p.Src))
	contentFS := os.DirFS(previewSrc)

	model, err := loadModel(filepath.Join(previewSrc, ModelFile))
	if err != nil {
		return err
	}
	model["env"] = p.Env

	layouts, err := compileLayouts(srcFS)
	if err != nil {
		return err
	}

	assets, err := pk.GlobFS(contentFS, "**/*.{png,svg}")
	if err != nil {
		return err
	}
	for _, name := range assets {
		if err := pk.CopyFile(filepath.Join(previewSrc, filepath.FromSlash(name)), filepath.Join(previewDest, filepath.FromSlash(name))); err != nil {
			return err
		}
	}

	docs, err := pk.GlobFS(contentFS, "**/*.adoc")
	if err != nil {
		return err
	}
	for _, name := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := renderPage(previewSrc, name, model, layouts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out := filepath.Join(previewDest, filepath.FromSlash(strings.TrimSuffix(name, ".adoc")+".html"))
		if err := pk.WriteFile(out, []byte(html)); err != nil {
			return err
		}
	}
	pk.Logger(ctx).Debug().Int("pages", len(docs)).Str("dest", p.PreviewDest).Msg("generated preview pages")

	if p.Reload != nil {
		p.Reload(ctx)
	}
	return nil
}

func loadModel(file string) (map[string]any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read ui model: %w", err)
	}
	model := map[string]any{}
	if err := yaml.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ModelFile, err)
	}
	return model, nil
}

// compileLayouts parses layouts/*.hbs keyed by file stem, with every
// partials/*.hbs registered on each layout.
func compileLayouts(srcFS fs.FS) (map[string]*raymond.Template, error) {
	partialFiles, err := pk.GlobFS(srcFS, "partials/*.hbs")
	if err != nil {
		return nil, err
	}
	partials := make(map[string]string, len(partialFiles))
	for _, f := range partialFiles {
		data, err := fs.ReadFile(srcFS, f)
		if err != nil {
			return nil, err
		}
		partials[stem(f)] = string(data)
	}

	layoutFiles, err := pk.GlobFS(srcFS, "layouts/*.hbs")
	if err != nil {
		return nil, err
	}
	layouts := make(map[string]*raymond.Template, len(layoutFiles))
	for _, f := range layoutFiles {
		data, err := fs.ReadFile(srcFS, f)
		if err != nil {
			return nil, err
		}
		tpl, err := raymond.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		tpl.RegisterPartials(partials)
		layouts[stem(f)] = tpl
	}
	return layouts, nil
}

func renderPage(previewSrc, name string, base map[string]any, layouts map[string]*raymond.Template) (string, error) {
	model := maps.Clone(base)
	page := map[string]any{}
	if basePage, ok := base["page"].(map[string]any); ok {
		page = maps.Clone(basePage)
	}

	siteRoot := siteRootPath(name)
	model["siteRootPath"] = siteRoot
	model["uiRootPath"] = path.Join(siteRoot, "_")
	if _, ok := page["url"]; !ok {
		page["url"] = "/" + strings.TrimSuffix(name, ".adoc") + ".html"
	}

	if stem(name) == "404" && path.Dir(name) == "." {
		page = map[string]any{"layout": "404", "title": "Page Not Found"}
	} else {
		doc, err := convert(filepath.Join(previewSrc, filepath.FromSlash(name)))
		if err != nil {
			return "", err
		}
		layout := DefaultLayout
		if v, ok := doc.attributes["page-layout"]; ok && v != "" {
			layout = v
		}
		page["attributes"] = pageAttributes(doc.attributes)
		page["layout"] = layout
		page["title"] = doc.title
		page["contents"] = doc.contents
	}
	model["page"] = page

	layout, _ := page["layout"].(string)
	tpl, ok := layouts[layout]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownLayout, layout)
	}
	tpl = tpl.Clone()
	registerHelpers(tpl, page)
	return tpl.Exec(model)
}

type document struct {
	title      string
	contents   string
	attributes map[string]string
}

func convert(file string) (document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return document{}, err
	}
	var out bytes.Buffer
	cfg := configuration.NewConfiguration(
		configuration.WithFilename(file),
		configuration.WithHeaderFooter(false),
	)
	meta, err := libasciidoc.Convert(bytes.NewReader(data), &out, cfg)
	if err != nil {
		return document{}, fmt.Errorf("convert: %w", err)
	}
	return document{
		title:      meta.Title,
		contents:   out.String(),
		attributes: headerAttributes(data),
	}, nil
}

// headerAttributes reads the attribute entries of the document header: the
// block of lines at the top of the file ending at the first blank line.
// Unset entries (":name!:") are skipped.
func headerAttributes(src []byte) map[string]string {
	attrs := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(src))
	started := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" {
			if started {
				break
			}
			continue
		}
		started = true
		if strings.HasPrefix(line, "//") {
			continue
		}
		if m := headerAttribute.FindStringSubmatch(line); m != nil {
			attrs[m[1]] = m[2]
		}
	}
	return attrs
}

// pageAttributes returns the page-* attributes with the prefix removed.
func pageAttributes(attrs map[string]string) map[string]any {
	out := map[string]any{}
	for k, v := range attrs {
		if name, ok := strings.CutPrefix(k, "page-"); ok {
			out[name] = v
		}
	}
	return out
}

// siteRootPath is the relative path from the page's directory to the site
// root, "." for top-level pages.
func siteRootPath(name string) string {
	dir := path.Dir(name)
	if dir == "." {
		return "."
	}
	return strings.TrimSuffix(strings.Repeat("../", strings.Count(dir, "/")+1), "/")
}

func stem(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}
