package pk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ToolConfig describes how to find or create a tool's configuration file.
type ToolConfig struct {
	// UserFiles are looked up in the project root, first match wins.
	UserFiles []string

	// DefaultFile and DefaultData are written when no user file exists.
	DefaultFile string
	DefaultData []byte
}

// ConfigPath returns the project's own config file for a tool, or writes
// the bundled default into dir and returns that. Node tools resolve shared
// configs relative to the config file, so dir is normally the directory
// the tool was installed into.
//
// Returns an empty string when cfg names no files.
func ConfigPath(ctx context.Context, dir string, cfg ToolConfig) (string, error) {
	for _, name := range cfg.UserFiles {
		path := FromRoot(ctx, name)
		if Exists(path) {
			return path, nil
		}
	}

	if cfg.DefaultFile == "" || len(cfg.DefaultData) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, cfg.DefaultFile)
	if current, err := os.ReadFile(path); err == nil && string(current) == string(cfg.DefaultData) {
		return path, nil
	}
	if err := WriteFile(path, cfg.DefaultData); err != nil {
		return "", fmt.Errorf("write default config: %w", err)
	}
	return path, nil
}
