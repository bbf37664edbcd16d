package domain

import (
	"path"
	"path/filepath"
	"time"
)

// Settings is the project configuration read from plait.yaml.
// Every field has a default, so a missing file is equivalent to DefaultSettings.
type Settings struct {
	Paths   PathSet
	Server  ServerSettings
	Icons   IconSettings
	Tools   ToolSettings
	Watch   WatchSettings
	Archive ArchiveSettings
}

// ServerSettings configures the preview server.
type ServerSettings struct {
	Host string
	Port int
}

// IconSettings configures icon-font generation.
type IconSettings struct {
	FontName       string
	ClassName      string
	FontPath       string
	StartCodepoint rune
}

// ToolSettings holds the argv templates of external plugin commands.
// "{in}" and "{out}" are substituted before execution; the icon-font
// generator receives "{config}", the path of a generated JSON config.
type ToolSettings struct {
	Sass     []string
	IconFont []string
	Gifsicle []string
	Jpegtran []string
	Optipng  []string
	Svgo     []string
	Cwebp    []string
}

// WatchSettings configures the file watcher.
type WatchSettings struct {
	Debounce time.Duration
}

// ArchiveSettings configures the zip entry point.
type ArchiveSettings struct {
	Name    string
	Exclude []string
	Upload  string
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Paths: DefaultPaths(),
		Server: ServerSettings{
			Host: "localhost",
			Port: 3000,
		},
		Icons: IconSettings{
			FontName:       "tpl-icons",
			ClassName:      "h-tpl-icon",
			FontPath:       "../font/tpl-icons/",
			StartCodepoint: 0xEA01,
		},
		Tools: ToolSettings{
			Sass:     []string{"sass"},
			IconFont: []string{"fantasticon", "--config", "{config}"},
			Gifsicle: []string{"gifsicle", "--interlace", "-O3", "{in}", "-o", "{out}"},
			Jpegtran: []string{"jpegtran", "-copy", "none", "-optimize", "-progressive", "-outfile", "{out}", "{in}"},
			Optipng:  []string{"optipng", "-quiet", "-o5", "{in}", "-out", "{out}"},
			Svgo:     []string{"svgo", "{in}", "-o", "{out}"},
			Cwebp:    []string{"cwebp", "-quiet", "-lossless", "{in}", "-o", "{out}"},
		},
		Archive: ArchiveSettings{
			Name: DefaultArchiveName,
		},
	}
}

// Config is the immutable run configuration handed to every task unit.
type Config struct {
	// Root is the absolute project root.
	Root     string
	Paths    PathSet
	Mode     BuildMode
	Strategy Strategy
	Settings Settings
}

// NewConfig resolves paths and mode once for a run.
func NewConfig(root, srcPath string, disableOptimize bool, settings Settings) *Config {
	paths := ResolvePaths(srcPath, settings.Paths)
	mode := ResolveMode(disableOptimize)
	return &Config{
		Root:     filepath.Clean(root),
		Paths:    paths,
		Mode:     mode,
		Strategy: NewStrategy(mode, paths),
		Settings: settings,
	}
}

// Abs returns the absolute OS path of a project-relative path.
func (c *Config) Abs(rel string) string {
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}

// Out joins elem onto the strategy's output root.
func (c *Config) Out(elem ...string) string {
	return CleanRel(path.Join(append([]string{c.Strategy.OutputRoot}, elem...)...))
}
