// Package archive compresses packaged output directories
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/types"
)

// Zipper writes a .zip sibling of a packaged output directory
type Zipper struct {
	logger logger.Logger
}

// NewZipper creates a new archiver
func NewZipper(log logger.Logger) *Zipper {
	return &Zipper{logger: log}
}

// Archive compresses dir into "<dir>.zip" and returns the archive path.
// Entry names are relative to dir. An existing archive is overwritten.
func (z *Zipper) Archive(dir string) (string, error) {
	zipPath := dir + ".zip"

	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("%w: creating archive %s: %v", types.ErrExternalTool, zipPath, err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	defer w.Close()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(entry, file)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: archiving %s: %v", types.ErrExternalTool, dir, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: finalizing archive %s: %v", types.ErrExternalTool, zipPath, err)
	}

	z.logger.Info(fmt.Sprintf("Archived %s", zipPath))
	return zipPath, nil
}
