package analysis

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// buildArchive packs every file in batchDir into a deflate-compressed ZIP at
// zipPath. The archive is written to a temp file first so a half-written ZIP
// is never served.
func buildArchive(batchDir, zipPath string) error {
	entries, err := os.ReadDir(batchDir)
	if err != nil {
		return fmt.Errorf("read batch dir: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("batch dir %s is empty", batchDir)
	}

	tmp, err := os.CreateTemp(filepath.Dir(zipPath), "archive-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := zip.NewWriter(tmp)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := addFile(w, batchDir, entry.Name()); err != nil {
			w.Close()
			tmp.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), zipPath)
}

func addFile(w *zip.Writer, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	dst, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, f)
	return err
}
