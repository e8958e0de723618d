package tools_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tools/bun"
	"github.com/fredrikaverpil/uibundle/tools/eslint"
	"github.com/fredrikaverpil/uibundle/tools/prettier"
	"github.com/fredrikaverpil/uibundle/tools/stylelint"
)

// toolTest describes a node tool wrapper.
type toolTest struct {
	name    string
	pkg     bun.Package
	config  pk.ToolConfig
	args    []string
	wantArg string
}

var tools = []toolTest{
	{"stylelint", stylelint.Package, stylelint.Config, stylelint.Args("cfg", "base", []string{"a.css"}), "--config-basedir"},
	{"eslint", eslint.Package, eslint.Config, eslint.Args("cfg", []string{"a.js"}), "--no-warn-ignored"},
	{"prettier", prettier.Package, prettier.Config, prettier.Args("cfg", []string{"a.js"}), "--write"},
}

func TestTools(t *testing.T) {
	for _, tool := range tools {
		t.Run(tool.name, func(t *testing.T) {
			if tool.pkg.Name != tool.name {
				t.Errorf("package name = %q", tool.pkg.Name)
			}
			if tool.pkg.Version == "" || strings.HasPrefix(tool.pkg.Version, "^") {
				t.Errorf("expected a pinned version, got %q", tool.pkg.Version)
			}
			for _, extra := range tool.pkg.Extra {
				if !strings.Contains(extra[1:], "@") {
					t.Errorf("companion package %q is not pinned", extra)
				}
			}

			if !slices.Contains(tool.args, tool.wantArg) {
				t.Errorf("args %v missing %s", tool.args, tool.wantArg)
			}
			if i := slices.Index(tool.args, "--config"); i < 0 || tool.args[i+1] != "cfg" {
				t.Errorf("args %v do not pass the config", tool.args)
			}
			if last := tool.args[len(tool.args)-1]; filepath.Ext(last) == "" {
				t.Errorf("expected files last, got %v", tool.args)
			}
		})
	}
}

func TestTools_DefaultConfig(t *testing.T) {
	for _, tool := range tools {
		t.Run(tool.name, func(t *testing.T) {
			root := t.TempDir()
			ctx := pk.ContextWithRoot(context.Background(), root)

			path, err := pk.ConfigPath(ctx, pk.FromToolsDir(ctx, tool.name), tool.config)
			if err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if filepath.Ext(path) == ".json" && !json.Valid(data) {
				t.Errorf("bundled %s is not valid JSON", filepath.Base(path))
			}
			if !strings.HasPrefix(path, filepath.Join(root, pk.CacheDirName)) {
				t.Errorf("default config %q written outside the cache dir", path)
			}
		})
	}
}
