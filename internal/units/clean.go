package units

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// Clean removes one output root.
type Clean struct {
	unit
	fsys   billy.Filesystem
	logger ports.Logger
	target func(domain.PathSet) string
}

// NewCleanDev returns the unit removing the dev root.
func NewCleanDev(d Deps) *Clean {
	return &Clean{
		unit:   pipeline.CleanDev,
		fsys:   d.FS,
		logger: d.Logger,
		target: func(p domain.PathSet) string { return p.Dev },
	}
}

// NewCleanDist returns the unit removing the dist root.
func NewCleanDist(d Deps) *Clean {
	return &Clean{
		unit:   pipeline.CleanDist,
		fsys:   d.FS,
		logger: d.Logger,
		target: func(p domain.PathSet) string { return p.Dist },
	}
}

// Run removes the output root. A root that holds the sources is left alone.
func (c *Clean) Run(_ context.Context, cfg *domain.Config) error {
	target := domain.CleanRel(c.target(cfg.Paths))
	if domain.Within(cfg.Paths.Source, target) {
		c.logger.Warn(fmt.Sprintf("%s: refusing to remove %q, it contains the sources", c.Name(), target))
		return nil
	}

	if err := util.RemoveAll(c.fsys, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", target)
	}
	return nil
}
