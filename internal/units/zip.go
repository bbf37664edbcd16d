package units

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
)

// ZipBuild packages the project without build outputs and optionally
// uploads the archive.
type ZipBuild struct {
	unit
	fsys     billy.Filesystem
	logger   ports.Logger
	archiver ports.Archiver
	uploader ports.Uploader
}

// NewZipBuild creates the zipBuild unit.
func NewZipBuild(d Deps) *ZipBuild {
	return &ZipBuild{
		unit:     pipeline.ZipBuild,
		fsys:     d.FS,
		logger:   d.Logger,
		archiver: d.Archiver,
		uploader: d.Uploader,
	}
}

func (u *ZipBuild) Run(ctx context.Context, cfg *domain.Config) error {
	settings := cfg.Settings.Archive
	name := settings.Name
	if name == "" {
		name = domain.DefaultArchiveName
	}

	count, err := u.archiver.Archive(u.fsys, name, ArchiveExcludes(cfg))
	if err != nil {
		return err
	}
	u.logger.Info(fmt.Sprintf("wrote %s with %d file(s)", name, count))

	if settings.Upload == "" {
		return nil
	}
	if err := u.uploader.Upload(ctx, u.fsys, name, settings.Upload); err != nil {
		return err
	}
	u.logger.Info(fmt.Sprintf("uploaded %s to %s", name, settings.Upload))
	return nil
}

// ArchiveExcludes returns the patterns left out of the archive: the output
// roots, the package manager files and any configured extras.
func ArchiveExcludes(cfg *domain.Config) []string {
	var exclude []string
	for _, root := range []string{cfg.Paths.Dist, cfg.Paths.Dev} {
		if root != domain.ProjectRoot {
			exclude = append(exclude, root+"/**")
		}
	}
	for _, p := range domain.DependencyMetadata {
		exclude = append(exclude, p+"/**")
	}
	return append(exclude, cfg.Settings.Archive.Exclude...)
}
