package config

// Plaitfile represents the structure of the plait.yaml configuration file.
// Every field is optional; zero values fall back to domain.DefaultSettings.
type Plaitfile struct {
	Version string     `yaml:"version"`
	Paths   PathsDTO   `yaml:"paths"`
	Server  ServerDTO  `yaml:"server"`
	Icons   IconsDTO   `yaml:"icons"`
	Tools   ToolsDTO   `yaml:"tools"`
	Watch   WatchDTO   `yaml:"watch"`
	Archive ArchiveDTO `yaml:"archive"`
}

// PathsDTO overrides the source, dev and dist roots.
type PathsDTO struct {
	Source string `yaml:"source"`
	Dev    string `yaml:"dev"`
	Dist   string `yaml:"dist"`
}

// ServerDTO configures the preview server.
type ServerDTO struct {
	Host string `yaml:"host"`
	Port *int   `yaml:"port"`
}

// IconsDTO configures icon-font generation.
type IconsDTO struct {
	FontName       string `yaml:"fontName"`
	ClassName      string `yaml:"className"`
	FontPath       string `yaml:"fontPath"`
	StartCodepoint string `yaml:"startCodepoint"`
}

// ToolsDTO overrides plugin command lines.
type ToolsDTO struct {
	Sass     []string `yaml:"sass"`
	IconFont []string `yaml:"iconfont"`
	Gifsicle []string `yaml:"gifsicle"`
	Jpegtran []string `yaml:"jpegtran"`
	Optipng  []string `yaml:"optipng"`
	Svgo     []string `yaml:"svgo"`
	Cwebp    []string `yaml:"cwebp"`
}

// WatchDTO configures the watcher.
type WatchDTO struct {
	Debounce string `yaml:"debounce"`
}

// ArchiveDTO configures the zip entry point.
type ArchiveDTO struct {
	Name    string   `yaml:"name"`
	Exclude []string `yaml:"exclude"`
	Upload  string   `yaml:"upload"`
}
