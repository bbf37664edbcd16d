package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrEmptyComposition is returned when a composition contains no units.
	ErrEmptyComposition = zerr.New("composition contains no units")

	// ErrEntryNotFound is returned when a requested entry point is not defined.
	ErrEntryNotFound = zerr.New("entry point not found")

	// ErrUnitNotFound is returned when a graph node references an unregistered task unit.
	ErrUnitNotFound = zerr.New("task unit not found")

	// ErrUnitFailed is returned when a task unit returns an error.
	ErrUnitFailed = zerr.New("task unit failed")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTransformFailed is returned when a plugin rejects its input (invalid stylesheet, bad include, ...).
	ErrTransformFailed = zerr.New("transformation failed")

	// ErrSourceNotFound is returned when a unit's required source file does not exist.
	ErrSourceNotFound = zerr.New("source not found")

	// ErrReadFailed is returned when a source file cannot be read.
	ErrReadFailed = zerr.New("failed to read file")

	// ErrWriteFailed is returned when an output file cannot be written.
	ErrWriteFailed = zerr.New("failed to write file")

	// ErrCleanFailed is returned when an output directory cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output directory")

	// ErrGlobFailed is returned when a glob pattern is malformed.
	ErrGlobFailed = zerr.New("invalid glob pattern")

	// ErrIncludeNotFound is returned when an include directive references a missing file.
	ErrIncludeNotFound = zerr.New("included file not found")

	// ErrIncludeCycle is returned when include directives reference each other recursively.
	ErrIncludeCycle = zerr.New("include cycle detected")

	// ErrCommandFailed is returned when an external plugin command exits with an error.
	ErrCommandFailed = zerr.New("command failed")

	// ErrToolNotFound is returned when an external plugin binary is not on PATH.
	ErrToolNotFound = zerr.New("tool not found on PATH")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrArchiveFailed is returned when the project archive cannot be written.
	ErrArchiveFailed = zerr.New("failed to write archive")

	// ErrUploadFailed is returned when the archive cannot be uploaded.
	ErrUploadFailed = zerr.New("failed to upload archive")

	// ErrInvalidUploadTarget is returned when the upload target is not an s3:// URL.
	ErrInvalidUploadTarget = zerr.New("invalid upload target, expected s3://bucket/prefix")

	// ErrServerFailed is returned when the preview server stops with an error.
	ErrServerFailed = zerr.New("preview server failed")

	// ErrWatcherFailed is returned when the file watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start file watcher")
)
