package zip

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"dataprep/internal/imageio"
)

// WriteDir streams every image file below dir into a zip archive written to
// w. Entry names are slash-separated paths relative to dir, so a partitioned
// dataset keeps its train/test/validation layout. It returns the number of
// archived files.
func WriteDir(ctx context.Context, dir string, w io.Writer) (int, error) {
	zw := zip.NewWriter(w)
	count := 0
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !imageio.IsImageFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		count++
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return count, fmt.Errorf("archive %s: %w", dir, walkErr)
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("archive %s: %w", dir, err)
	}
	return count, nil
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
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	// jpeg and png payloads are already compressed
	hdr.Method = zip.Store

	entry, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
