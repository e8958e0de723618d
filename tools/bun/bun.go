// Package bun provides the bun runtime, used to install and run the node
// tools (stylelint, eslint, prettier) when the project has not installed
// them itself.
package bun

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fredrikaverpil/uibundle/internal/npm"
	"github.com/fredrikaverpil/uibundle/pk"
)

// Name is the binary name for bun.
const Name = "bun"

// renovate: datasource=github-releases depName=oven-sh/bun extractVersion=^bun-v(?<version>.*)$
const Version = "1.3.6"

// installs are serialized so parallel lint branches share one download.
var installMu sync.Mutex

// URL returns the release archive for version on goos/goarch.
func URL(version, goos, goarch string) string {
	platform := pk.PlatformTriple(goos, goarch)
	if goos == pk.Windows {
		platform = "windows-x64"
	}
	return fmt.Sprintf(
		"https://github.com/oven-sh/bun/releases/download/bun-v%s/bun-%s.zip",
		version, platform,
	)
}

// Install returns the path to a bun binary. A bun found on PATH is used
// as is; otherwise the pinned release is downloaded into the tools dir.
func Install(ctx context.Context) (string, error) {
	if path, err := exec.LookPath(Name); err == nil {
		return path, nil
	}

	installMu.Lock()
	defer installMu.Unlock()

	binDir := pk.FromToolsDir(ctx, Name, Version, "bin")
	binary := filepath.Join(binDir, pk.BinaryName(Name))
	if pk.Exists(binary) {
		return binary, nil
	}

	pk.Printf(ctx, "Installing bun %s...\n", Version)
	err := pk.Download(ctx, URL(Version, runtime.GOOS, runtime.GOARCH),
		pk.WithDestDir(binDir),
		pk.WithFormat("zip"),
		pk.WithExtract(pk.WithExtractFile(pk.BinaryName(Name))),
		pk.WithSkipIfExists(binary),
	)
	if err != nil {
		return "", fmt.Errorf("install bun: %w", err)
	}
	return binary, nil
}

// BinaryPath returns the path to a binary installed by bun in installDir.
func BinaryPath(installDir, binaryName string) string {
	return filepath.Join(installDir, "node_modules", ".bin", pk.BinaryName(binaryName))
}

// Package is an npm package providing a command line tool.
type Package struct {
	Name    string   // npm package name
	Version string   // pinned version, overridden by package.json
	Bin     string   // executable name, defaults to Name
	Extra   []string // companion packages (shared configs, plugins)
}

// Installation is a resolved Package.
type Installation struct {
	Binary string

	// ModulesDir holds the node_modules the binary was installed into.
	ModulesDir string

	// ConfigDir is where a bundled default config is written. It equals
	// ModulesDir for bun installs so that shared configs resolve.
	ConfigDir string
}

// Resolve locates the package executable. The project's own
// node_modules/.bin wins; otherwise the package is installed with bun into
// .uibundle/tools/<name>/<version>.
func (p Package) Resolve(ctx context.Context) (Installation, error) {
	bin := p.Bin
	if bin == "" {
		bin = p.Name
	}

	if local := pk.FromRoot(ctx, "node_modules", ".bin", pk.BinaryName(bin)); pk.Exists(local) {
		return Installation{
			Binary:     local,
			ModulesDir: pk.FromRoot(ctx),
			ConfigDir:  pk.FromToolsDir(ctx, p.Name),
		}, nil
	}

	version, ok, err := npm.DeclaredVersion(pk.RootFromContext(ctx), p.Name)
	if err != nil {
		return Installation{}, err
	}
	if !ok {
		version = p.Version
	}

	installDir := pk.FromToolsDir(ctx, p.Name, version)
	inst := Installation{
		Binary:     BinaryPath(installDir, bin),
		ModulesDir: installDir,
		ConfigDir:  installDir,
	}
	if pk.Exists(inst.Binary) {
		return inst, nil
	}

	bunPath, err := Install(ctx)
	if err != nil {
		return Installation{}, err
	}

	installMu.Lock()
	defer installMu.Unlock()
	if pk.Exists(inst.Binary) {
		return inst, nil
	}

	pk.Printf(ctx, "Installing %s %s...\n", p.Name, version)
	if err := pk.WriteFile(filepath.Join(installDir, "package.json"), []byte("{}\n")); err != nil {
		return Installation{}, err
	}
	args := []string{"add", "--cwd", installDir, p.Name + "@" + version}
	args = append(args, p.Extra...)
	if err := pk.Exec(ctx, bunPath, args...); err != nil {
		return Installation{}, fmt.Errorf("install %s: %w", p.Name, err)
	}
	return inst, nil
}
