package ports

import (
	"context"

	"github.com/go-git/go-billy/v5"
)

//go:generate mockgen -source=archive.go -destination=mocks/mock_archive.go -package=mocks

// Archiver packages a project tree into a single file.
type Archiver interface {
	// Archive writes name at the root of fsys containing every file not
	// matched by the exclude patterns. It returns the number of entries written.
	Archive(fsys billy.Filesystem, name string, exclude []string) (int, error)
}

// Uploader publishes a built archive.
type Uploader interface {
	// Upload copies the file at path in fsys to target.
	Upload(ctx context.Context, fsys billy.Filesystem, path, target string) error
}
