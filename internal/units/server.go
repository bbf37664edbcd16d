package units

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/go-git/go-billy/v5"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// Browser serves the dev root until the run is cancelled.
type Browser struct {
	unit
	fsys   billy.Filesystem
	logger ports.Logger
	server ports.PreviewServer
}

// NewBrowser creates the browser unit.
func NewBrowser(d Deps) *Browser {
	return &Browser{unit: pipeline.Browser, fsys: d.FS, logger: d.Logger, server: d.Server}
}

func (u *Browser) Run(ctx context.Context, cfg *domain.Config) error {
	root := cfg.Paths.Dev
	if cfg.Strategy.OutputRoot != root {
		u.logger.Warn(fmt.Sprintf("serving %s while building into %s; use --disableOptimize to preview the build", root, cfg.Strategy.OutputRoot))
	}

	fsys, err := u.fsys.Chroot(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServerFailed.Error()), "path", root)
	}

	addr := net.JoinHostPort(cfg.Settings.Server.Host, strconv.Itoa(cfg.Settings.Server.Port))
	return u.server.Serve(ctx, fsys, addr)
}

// BrowserReload asks connected browsers to reload.
type BrowserReload struct {
	unit
	reloader ports.Reloader
}

// NewBrowserReload creates the browserReload unit.
func NewBrowserReload(d Deps) *BrowserReload {
	return &BrowserReload{unit: pipeline.BrowserReload, reloader: d.Reloader}
}

func (u *BrowserReload) Run(context.Context, *domain.Config) error {
	u.reloader.Reload()
	return nil
}
