// Package preview "shows" figures by writing them as PNG files into a
// preview directory, for review outside a notebook.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer implements domain.Displayer on the filesystem.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first use.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Show writes img to <dir>/<name>.png, replacing any earlier preview of
// the same name.
func (w *Writer) Show(ctx context.Context, name string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create preview dir: %w", err)
	}

	path := w.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close preview: %w", err)
	}

	w.logger.Info("figure ready", "path", path)
	return nil
}

// Path returns where a preview of name is written.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".png")
}
