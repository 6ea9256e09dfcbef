package expand

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/rs/zerolog"

	"dataprep/internal/imageio"
)

// Crawl walks dir recursively and yields the absolute path of every image
// file in lexical order. Unreadable entries are logged and skipped.
func Crawl(ctx context.Context, dir string, logger zerolog.Logger) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return filepath.SkipAll
			}
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("expand: skipping unreadable entry")
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !imageio.IsImageFile(d.Name()) {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("expand: cannot resolve absolute path")
				return nil
			}
			if !yield(abs) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
