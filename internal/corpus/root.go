package corpus

import (
	"context"
	"io/fs"

	"github.com/mholt/archives"
	"gitlab.com/tozd/go/errors"
)

// OpenRoot opens the documentation root, which may be a directory or an
// archive such as a zip or a compressed tarball.
func OpenRoot(ctx context.Context, path string) (fs.FS, error) {
	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return nil, errors.Errorf("open documentation root %s: %w", path, err)
	}
	return fsys, nil
}
