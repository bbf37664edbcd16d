package domain

// BuildMode selects between the development and the production pipeline.
type BuildMode int

const (
	// ModeOptimized writes minified, sourcemap-free output to the dist root.
	ModeOptimized BuildMode = iota
	// ModeRaw writes unminified output with embedded sourcemaps to the dev root.
	ModeRaw
)

// String returns the flag-facing name of the mode.
func (m BuildMode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "optimized"
}

// ResolveMode maps the --disableOptimize flag onto a BuildMode.
func ResolveMode(disableOptimize bool) BuildMode {
	if disableOptimize {
		return ModeRaw
	}
	return ModeOptimized
}

// Strategy holds every mode-dependent decision a task unit may consult.
// Units never branch on BuildMode directly.
type Strategy struct {
	Mode       BuildMode
	OutputRoot string
	Minify     bool
	SourceMaps bool
}

// NewStrategy derives the strategy for mode over the resolved paths.
func NewStrategy(mode BuildMode, paths PathSet) Strategy {
	if mode == ModeRaw {
		return Strategy{
			Mode:       ModeRaw,
			OutputRoot: paths.Dev,
			SourceMaps: true,
		}
	}
	return Strategy{
		Mode:       ModeOptimized,
		OutputRoot: paths.Dist,
		Minify:     true,
	}
}
