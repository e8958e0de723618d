// Package uibundle holds the configuration of the UI bundle build: the
// fixed directory layout, the bundle name, the preview server settings and
// the few values derived from the command line and environment.
package uibundle

import (
	"strings"
)

// Directory layout, relative to the project root.
const (
	SrcDir         = "src"
	PreviewSrcDir  = "preview-src"
	PreviewDestDir = "public"
	DestDir        = PreviewDestDir + "/_"
	BuildDir       = "build"
)

// BundleName is the base name of the packaged bundle (<name>-bundle.zip).
const BundleName = "ui"

// Preview server defaults.
const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 5252
)

// Environment variables read by Load.
const (
	EnvLiveReload = "LIVERELOAD"
	EnvCI         = "CI"
)

// Paths maps the logical directory roles to relative paths.
type Paths struct {
	Src         string // UI sources
	PreviewSrc  string // sample content for the preview site
	PreviewDest string // generated preview site
	Dest        string // staged UI assets (inside the preview site)
	Build       string // packaged bundle output
}

// DefaultPaths returns the fixed directory layout.
func DefaultPaths() Paths {
	return Paths{
		Src:         SrcDir,
		PreviewSrc:  PreviewSrcDir,
		PreviewDest: PreviewDestDir,
		Dest:        DestDir,
		Build:       BuildDir,
	}
}

// Globs are the source file patterns the lint, format and watch tasks use.
type Globs struct {
	All []string // watched roots
	CSS string
	JS  []string
}

// DefaultGlobs returns the source patterns for p.
func DefaultGlobs(p Paths) Globs {
	return Globs{
		All: []string{p.Src, p.PreviewSrc},
		CSS: p.Src + "/css/**/*.css",
		JS:  []string{p.Src + "/{helpers,js}/**/*.js"},
	}
}

// Server configures the preview server.
type Server struct {
	Host       string
	Port       int
	LiveReload bool
}

// DefaultServer returns the preview server configuration.
func DefaultServer(liveReload bool) Server {
	return Server{
		Host:       DefaultHost,
		Port:       DefaultPort,
		LiveReload: liveReload,
	}
}

// Config is resolved once at startup and passed to the task graph.
type Config struct {
	Paths      Paths
	Globs      Globs
	BundleName string
	Server     Server

	// Preview is set when any command-line argument names a preview task.
	// It makes the build keep assets readable.
	Preview bool

	// CI suppresses the bundle location hint after packing.
	CI bool

	// Env is a snapshot of the environment handed to preview page templates.
	Env map[string]string
}

// Load resolves the configuration from the command-line arguments (without
// the program name) and the environment in os.Environ form.
func Load(args, environ []string) Config {
	env := parseEnviron(environ)
	paths := DefaultPaths()
	return Config{
		Paths:      paths,
		Globs:      DefaultGlobs(paths),
		BundleName: BundleName,
		Server:     DefaultServer(env[EnvLiveReload] == "true"),
		Preview:    PreviewMode(args),
		CI:         env[EnvCI] != "",
		Env:        env,
	}
}

// PreviewMode reports whether any argument starts with "preview".
func PreviewMode(args []string) bool {
	for _, arg := range args {
		if strings.HasPrefix(arg, "preview") {
			return true
		}
	}
	return false
}

// BundleFile returns the archive file name, e.g. ui-bundle.zip.
func (c Config) BundleFile() string {
	return c.BundleName + "-bundle.zip"
}

func parseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}
