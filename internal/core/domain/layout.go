package domain

const (
	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "plait.yaml"

	// DefaultSourceDir is the conventional source root.
	DefaultSourceDir = "src"

	// DefaultDevDir is the conventional intermediate ("dev") root.
	DefaultDevDir = "dev"

	// DefaultDistDir is the conventional distribution root.
	DefaultDistDir = "dist"

	// InPlaceSourcePath is the --srcPath value that collapses all roots onto the project root.
	InPlaceSourcePath = "this"

	// ProjectRoot is the project-relative path of the project root itself.
	ProjectRoot = "."

	// DefaultArchiveName is the name of the archive written by the zip entry point.
	DefaultArchiveName = "src.zip"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// Source layout, relative to the source root.
const (
	StyleEntry        = "assets/css/main.scss"
	ScriptEntry       = "assets/js/main.js"
	VendorScriptEntry = "assets/js/vendor.js"
	TemplatesDir      = "templates"
	IconsDir          = "assets/img/tpl-icons"
	FontDir           = "assets/font"
	IconFontDir       = "assets/font/tpl-icons"
	ImageDir          = "assets/img"
	PHPDir            = "assets/php"
	VendorDir         = "assets/vendor"
	StyleOutputDir    = "assets/css"
	ScriptOutputDir   = "assets/js"
)

// CopiedDirs lists the source directories copied verbatim into the output root.
var CopiedDirs = []string{FontDir, ImageDir, PHPDir, VendorDir, TemplatesDir}

// ImagePatterns are the source globs optimized by the images unit.
var ImagePatterns = []string{"**/*.png", "**/*.svg", "**/*.jpg", "**/*.jpeg", "**/*.gif"}

// DependencyMetadata lists project-relative paths owned by the JS package manager.
var DependencyMetadata = []string{"node_modules", "package-lock.json"}
