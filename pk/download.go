package pk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// DownloadOpt configures download and extraction behavior.
type DownloadOpt func(*downloadConfig)

type downloadConfig struct {
	destDir      string
	format       string // "zip" or "" (raw copy)
	extractOpts  []ExtractOpt
	skipIfExists string
	client       *http.Client
}

func newDownloadConfig(opts []DownloadOpt) *downloadConfig {
	cfg := &downloadConfig{client: http.DefaultClient}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithDestDir sets the destination directory for extraction.
func WithDestDir(dir string) DownloadOpt {
	return func(cfg *downloadConfig) {
		cfg.destDir = dir
	}
}

// WithFormat sets the archive format: "zip", or "" for a raw copy.
func WithFormat(format string) DownloadOpt {
	return func(cfg *downloadConfig) {
		cfg.format = format
	}
}

// WithExtract adds extraction options.
func WithExtract(opt ExtractOpt) DownloadOpt {
	return func(cfg *downloadConfig) {
		cfg.extractOpts = append(cfg.extractOpts, opt)
	}
}

// WithSkipIfExists skips the download if the specified file exists.
func WithSkipIfExists(path string) DownloadOpt {
	return func(cfg *downloadConfig) {
		cfg.skipIfExists = path
	}
}

// WithHTTPClient sets the client used for the request.
func WithHTTPClient(c *http.Client) DownloadOpt {
	return func(cfg *downloadConfig) {
		cfg.client = c
	}
}

// Download fetches url and extracts or copies it into the destination dir.
func Download(ctx context.Context, url string, opts ...DownloadOpt) error {
	cfg := newDownloadConfig(opts)

	if cfg.skipIfExists != "" && Exists(cfg.skipIfExists) {
		return nil
	}

	destDir := cfg.destDir
	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}

	Logger(ctx).Info().Msgf("Downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := cfg.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "uibundle-download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return fmt.Errorf("download: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	switch cfg.format {
	case "zip":
		if err := ExtractZip(tmpPath, destDir, cfg.extractOpts...); err != nil {
			return fmt.Errorf("extract zip: %w", err)
		}
	case "":
		if err := CopyFile(tmpPath, filepath.Join(destDir, path.Base(url))); err != nil {
			return fmt.Errorf("copy file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported archive format %q", cfg.format)
	}
	return nil
}
