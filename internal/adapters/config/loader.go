// Package config provides the plait.yaml loader.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const maxPort = 65535

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader with the given logger, reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load reads the settings for the project rooted at root.
func (l *Loader) Load(root, configPath string) (*domain.Settings, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(root, domain.ConfigFileName)
	} else if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(root, configPath)
	}

	settings := domain.DefaultSettings()

	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &settings, nil
		}
		err = zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
		return nil, zerr.With(err, "path", configPath)
	}

	var file Plaitfile
	if err := decodeStrict(data, &file); err != nil {
		err = zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
		return nil, zerr.With(err, "path", configPath)
	}

	if file.Version != "" && file.Version != "1" {
		l.Logger.Warn("unknown " + domain.ConfigFileName + " version " + strconv.Quote(file.Version) + ", reading as version 1")
	}

	if err := apply(&settings, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	return &settings, nil
}

// decodeStrict unmarshals YAML, rejecting unknown keys. An empty document is valid.
func decodeStrict(data []byte, target *Plaitfile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func apply(s *domain.Settings, f *Plaitfile) error {
	if err := applyPaths(&s.Paths, f.Paths); err != nil {
		return err
	}

	if f.Server.Host != "" {
		s.Server.Host = f.Server.Host
	}
	if f.Server.Port != nil {
		if *f.Server.Port < 0 || *f.Server.Port > maxPort {
			return zerr.With(domain.ErrInvalidConfig, "server.port", *f.Server.Port)
		}
		s.Server.Port = *f.Server.Port
	}

	if err := applyIcons(&s.Icons, f.Icons); err != nil {
		return err
	}

	overrideArgv(&s.Tools.Sass, f.Tools.Sass)
	overrideArgv(&s.Tools.IconFont, f.Tools.IconFont)
	overrideArgv(&s.Tools.Gifsicle, f.Tools.Gifsicle)
	overrideArgv(&s.Tools.Jpegtran, f.Tools.Jpegtran)
	overrideArgv(&s.Tools.Optipng, f.Tools.Optipng)
	overrideArgv(&s.Tools.Svgo, f.Tools.Svgo)
	overrideArgv(&s.Tools.Cwebp, f.Tools.Cwebp)

	if f.Watch.Debounce != "" {
		d, err := time.ParseDuration(f.Watch.Debounce)
		if err != nil || d < 0 {
			return zerr.With(domain.ErrInvalidConfig, "watch.debounce", f.Watch.Debounce)
		}
		s.Watch.Debounce = d
	}

	return applyArchive(&s.Archive, f.Archive)
}

func applyPaths(p *domain.PathSet, dto PathsDTO) error {
	for _, field := range []struct {
		key   string
		value string
		dst   *string
	}{
		{"paths.source", dto.Source, &p.Source},
		{"paths.dev", dto.Dev, &p.Dev},
		{"paths.dist", dto.Dist, &p.Dist},
	} {
		if field.value == "" {
			continue
		}
		if err := validateRelative(field.key, field.value); err != nil {
			return err
		}
		*field.dst = domain.CleanRel(field.value)
	}
	return nil
}

// validateRelative rejects paths that escape the project root.
func validateRelative(key, value string) error {
	slashed := filepath.ToSlash(value)
	if filepath.IsAbs(value) || strings.HasPrefix(slashed, "/") {
		return zerr.With(zerr.With(domain.ErrInvalidConfig, "field", key), "reason", "must be relative to the project root")
	}
	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return zerr.With(zerr.With(domain.ErrInvalidConfig, "field", key), "reason", "must not leave the project root")
	}
	return nil
}

func applyIcons(icons *domain.IconSettings, dto IconsDTO) error {
	if dto.FontName != "" {
		icons.FontName = dto.FontName
	}
	if dto.ClassName != "" {
		icons.ClassName = dto.ClassName
	}
	if dto.FontPath != "" {
		icons.FontPath = dto.FontPath
	}
	if dto.StartCodepoint != "" {
		hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToUpper(dto.StartCodepoint), "U+"), "0X")
		cp, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || cp > 0x10FFFF {
			return zerr.With(domain.ErrInvalidConfig, "icons.startCodepoint", dto.StartCodepoint)
		}
		icons.StartCodepoint = rune(cp)
	}
	return nil
}

func applyArchive(a *domain.ArchiveSettings, dto ArchiveDTO) error {
	if dto.Name != "" {
		if strings.ContainsAny(dto.Name, `/\`) {
			return zerr.With(domain.ErrInvalidConfig, "archive.name", dto.Name)
		}
		a.Name = dto.Name
	}
	a.Exclude = append(a.Exclude, dto.Exclude...)
	if dto.Upload != "" {
		if !strings.HasPrefix(dto.Upload, "s3://") {
			return zerr.With(domain.ErrInvalidUploadTarget, "archive.upload", dto.Upload)
		}
		a.Upload = dto.Upload
	}
	return nil
}

func overrideArgv(dst *[]string, argv []string) {
	if len(argv) > 0 {
		*dst = argv
	}
}
