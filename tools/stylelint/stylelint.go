// Package stylelint provides stylelint (CSS linter) integration.
package stylelint

import (
	"context"
	_ "embed"

	"github.com/fredrikaverpil/uibundle/pk"
	"github.com/fredrikaverpil/uibundle/tools/bun"
)

// Name is the binary name for stylelint.
const Name = "stylelint"

// renovate: datasource=npm depName=stylelint
const Version = "16.23.1"

// renovate: datasource=npm depName=stylelint-config-standard
const configStandardVersion = "38.0.0"

//go:embed stylelintrc.json
var defaultConfig []byte

// Package installs stylelint together with the standard shared config.
var Package = bun.Package{
	Name:    Name,
	Version: Version,
	Extra:   []string{"stylelint-config-standard@" + configStandardVersion},
}

// Config for stylelint configuration file lookup.
var Config = pk.ToolConfig{
	UserFiles: []string{
		".stylelintrc",
		".stylelintrc.json",
		".stylelintrc.yaml",
		".stylelintrc.yml",
		"stylelint.config.js",
		"stylelint.config.mjs",
	},
	DefaultFile: ".stylelintrc.json",
	DefaultData: defaultConfig,
}

// Exec runs stylelint with the resolved config on files.
func Exec(ctx context.Context, files ...string) error {
	inst, err := Package.Resolve(ctx)
	if err != nil {
		return err
	}
	config, err := pk.ConfigPath(ctx, inst.ConfigDir, Config)
	if err != nil {
		return err
	}
	return pk.Exec(ctx, inst.Binary, Args(config, inst.ModulesDir, files)...)
}

// Args builds the stylelint command line. Shared configs named by the
// config file are resolved from basedir.
func Args(config, basedir string, files []string) []string {
	args := []string{"--config", config, "--config-basedir", basedir}
	return append(args, files...)
}
