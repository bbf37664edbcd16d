package domain

// Asset is an in-memory file flowing through a plugin.
// Path is project-relative and slash separated.
type Asset struct {
	Path string
	Data []byte
}

// WatchRule maps source patterns to the step re-run when a matching file changes.
// Patterns are project-relative doublestar globs.
type WatchRule struct {
	Name     string
	Patterns []string
	Reaction Step
}
