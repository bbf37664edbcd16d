// Package archive packages the project tree into a zip file.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"slices"

	"github.com/go-git/go-billy/v5"
	plaitfs "go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Archiver = (*Zipper)(nil)

// Zipper implements ports.Archiver with archive/zip over a billy filesystem.
type Zipper struct {
	walker *plaitfs.Walker
}

// NewZipper creates a new Zipper.
func NewZipper(walker *plaitfs.Walker) *Zipper {
	return &Zipper{walker: walker}
}

// Archive writes name with every file of fsys not matched by exclude.
// Entries are sorted and keep their mode and modification time. The archive
// is written to a temporary file and renamed into place.
func (z *Zipper) Archive(fsys billy.Filesystem, name string, exclude []string) (int, error) {
	name = domain.CleanRel(name)
	tmpName := path.Join(path.Dir(name), "."+path.Base(name)+".tmp")

	files, err := z.walker.Files(fsys, domain.ProjectRoot, append(slices.Clone(exclude), "/"+name, "/"+tmpName))
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrArchiveFailed.Error())
	}

	tmp, err := fsys.OpenFile(tmpName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "path", name)
	}

	if err := writeZip(tmp, fsys, files); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return 0, zerr.With(err, "path", name)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return 0, zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "path", name)
	}
	if err := fsys.Rename(tmpName, name); err != nil {
		_ = fsys.Remove(tmpName)
		return 0, zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "path", name)
	}

	return len(files), nil
}

func writeZip(w io.Writer, fsys billy.Filesystem, files []string) error {
	zw := zip.NewWriter(w)
	for _, file := range files {
		if err := addFile(zw, fsys, file); err != nil {
			_ = zw.Close()
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "entry", file)
		}
	}
	if err := zw.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrArchiveFailed.Error())
	}
	return nil
}

func addFile(zw *zip.Writer, fsys billy.Filesystem, name string) error {
	info, err := fsys.Stat(name)
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(w, f)
	return err
}
