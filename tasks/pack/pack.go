// Package pack archives the staged UI assets into a bundle.
package pack

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fredrikaverpil/uibundle/pk"
)

// FinishFunc is called with the absolute path of the written bundle.
type FinishFunc func(ctx context.Context, bundlePath string) error

// FileName returns the archive name for bundleName.
func FileName(bundleName string) string {
	return bundleName + "-bundle.zip"
}

// Pack returns a runnable that zips every file under src into
// dest/<bundleName>-bundle.zip and then calls onFinish, if set.
func Pack(src, dest, bundleName string, onFinish FinishFunc) pk.Runnable {
	return pk.Do(func(ctx context.Context) error {
		srcDir := pk.FromRoot(ctx, src)
		bundlePath := pk.FromRoot(ctx, dest, FileName(bundleName))

		if err := Zip(ctx, srcDir, bundlePath); err != nil {
			return err
		}
		if onFinish == nil {
			return nil
		}
		return onFinish(ctx, bundlePath)
	})
}

// Zip writes the files under srcDir into a new archive at target. Entry
// names are slash-separated and relative to srcDir; dotfiles are included.
func Zip(ctx context.Context, srcDir, target string) error {
	if _, err := os.Stat(srcDir); err != nil {
		return fmt.Errorf("nothing to pack: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".bundle-*.zip")
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, filepath.ToSlash(rel))
	})
	if err != nil {
		zw.Close()
		tmp.Close()
		return fmt.Errorf("pack %s: %w", srcDir, err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finish bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("finish bundle: %w", err)
	}
	return os.Rename(tmp.Name(), target)
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
