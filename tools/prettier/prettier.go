// Package prettier provides prettier (code formatter) integration.
// prettier is installed via bun into a local directory.
package prettier

import (
	"context"
	_ "embed"

	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tools/bun"
)

// Name is the binary name for prettier.
const Name = "prettier"

// renovate: datasource=npm depName=prettier
const Version = "3.7.4"

//go:embed prettierrc.json
var defaultConfig []byte

// Package installs prettier.
var Package = bun.Package{Name: Name, Version: Version}

// Config for prettier configuration file lookup.
var Config = pk.ToolConfig{
	UserFiles: []string{
		".prettierrc",
		".prettierrc.json",
		".prettierrc.yaml",
		".prettierrc.yml",
		"prettier.config.js",
		"prettier.config.mjs",
	},
	DefaultFile: ".prettierrc.json",
	DefaultData: defaultConfig,
}

// Write formats files in place.
func Write(ctx context.Context, files ...string) error {
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

// Args builds the prettier command line for an in-place rewrite.
func Args(config string, files []string) []string {
	args := []string{"--config", config, "--write", "--log-level", "warn"}
	return append(args, files...)
}
