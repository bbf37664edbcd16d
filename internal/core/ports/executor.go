// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Command describes an external plugin process.
type Command struct {
	// Args is the argv of the process; Args[0] is looked up on PATH.
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra "KEY=VALUE" pairs appended to the process environment.
	Env []string
	// Stdin is fed to the process when non-nil.
	Stdin []byte
}

// Executor defines the interface for running external plugin commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command with its output streamed to stdout and stderr.
	//
	// It returns an error if the command cannot start or exits non-zero.
	Execute(ctx context.Context, cmd Command, stdout, stderr io.Writer) error

	// Capture runs the command and returns its standard output.
	// Standard error is attached to the returned error on failure.
	Capture(ctx context.Context, cmd Command) ([]byte, error)
}
