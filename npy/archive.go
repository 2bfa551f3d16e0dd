package npy

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one named array in an archive.
type Entry struct {
	Name  string
	Shape []int
	Data  any
}

// WriteArchive writes entries to an uncompressed .npz archive at path.
func WriteArchive(path string, entries []Entry) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", path, err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, e := range entries {
			name := e.Name
			if !strings.HasSuffix(name, Suffix) {
				name += Suffix
			}
			fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
			if err != nil {
				return err
			}
			if err := Write(fw, e.Shape, e.Data); err != nil {
				return fmt.Errorf("entry %s: %w", e.Name, err)
			}
		}
		return zw.Close()
	})
}
