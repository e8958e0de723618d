// Package eslint provides eslint (JavaScript linter) integration using the
// neostandard flavor of JavaScript Standard Style.
package eslint

import (
	"context"
	_ "embed"

	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tools/bun"
)

// Name is the binary name for eslint.
const Name = "eslint"

// renovate: datasource=npm depName=eslint
const Version = "9.35.0"

// renovate: datasource=npm depName=neostandard
const neostandardVersion = "0.12.2"

//go:embed eslint.config.mjs
var defaultConfig []byte

// Package installs eslint together with neostandard.
var Package = bun.Package{
	Name:    Name,
	Version: Version,
	Extra:   []string{"neostandard@" + neostandardVersion},
}

// Config for eslint configuration file lookup.
var Config = pk.ToolConfig{
	UserFiles: []string{
		"eslint.config.js",
		"eslint.config.mjs",
		"eslint.config.cjs",
	},
	DefaultFile: "eslint.config.mjs",
	DefaultData: defaultConfig,
}

// Exec runs eslint with the resolved config on files.
func Exec(ctx context.Context, files ...string) error {
	inst, err := Package.Resolve(ctx)
	if err != nil {
		return err
	}
	config, err := pk.ConfigPath(ctx, inst.ConfigDir, Config)
	if err != nil {
		return err
	}
	return pk.Exec(ctx, inst.Binary, Args(config, files)...)
}

// Args builds the eslint command line.
func Args(config string, files []string) []string {
	args := []string{"--config", config, "--no-warn-ignored"}
	return append(args, files...)
}
