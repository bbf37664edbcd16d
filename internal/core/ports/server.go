package ports

import (
	"context"

	"github.com/go-git/go-billy/v5"
)

//go:generate mockgen -source=server.go -destination=mocks/mock_server.go -package=mocks

// PreviewServer serves a built output root to browsers.
type PreviewServer interface {
	// Serve blocks until ctx is cancelled.
	Serve(ctx context.Context, fsys billy.Filesystem, addr string) error
}

// Reloader notifies connected browsers of rebuilt output.
// Calls without a running server are no-ops.
type Reloader interface {
	// Reload asks every client to reload the page.
	Reload()
	// InjectStyles asks every client to swap the given stylesheets in place.
	InjectStyles(paths []string)
}
