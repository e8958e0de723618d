package pk

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractOpt configures extraction behavior.
type ExtractOpt func(*extractConfig)

type extractConfig struct {
	// renameMap maps source paths (or base names) to destination names.
	renameMap map[string]string
}

func newExtractConfig(opts []ExtractOpt) *extractConfig {
	cfg := &extractConfig{
		renameMap: make(map[string]string),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithExtractFile extracts only the specified file (by base name),
// flattened into the destination directory.
func WithExtractFile(name string) ExtractOpt {
	return func(cfg *extractConfig) {
		cfg.renameMap[name] = name
	}
}

// ExtractZip extracts a .zip archive to destDir.
func ExtractZip(src, destDir string, opts ...ExtractOpt) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	cfg := newExtractConfig(opts)
	cleanDest := filepath.Clean(destDir)

	for _, f := range r.File {
		outputName, shouldExtract := resolveOutputName(f.Name, cfg)
		if !shouldExtract {
			continue
		}

		target := filepath.Join(destDir, outputName)
		if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return fmt.Errorf("invalid file path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if len(cfg.renameMap) > 0 {
				continue
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
		if err := extractZipFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open file in archive: %w", err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return fmt.Errorf("write file: %w", err)
	}
	return outFile.Close()
}

// resolveOutputName determines the output file name based on extraction config.
func resolveOutputName(fullPath string, cfg *extractConfig) (string, bool) {
	if len(cfg.renameMap) == 0 {
		return fullPath, true
	}
	if destName, ok := cfg.renameMap[fullPath]; ok {
		return destName, true
	}
	if destName, ok := cfg.renameMap[filepath.Base(fullPath)]; ok {
		return destName, true
	}
	return "", false
}
