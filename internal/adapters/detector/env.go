// Package detector inspects the process environment to pick how progress
// output is colored.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"go.trai.ch/plait/internal/ui/output"
	"golang.org/x/term"
)

// Environment describes the terminal the CLI writes progress to.
type Environment struct {
	TTY     bool
	CI      bool
	NoColor bool
}

// Detect inspects f and the process environment.
func Detect(f *os.File) Environment {
	ci := os.Getenv("CI")
	return Environment{
		TTY:     f != nil && term.IsTerminal(int(f.Fd())),
		CI:      ci == "true" || ci == "1",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// Profile returns the color profile for progress output.
// CI logs keep basic ANSI colors even though they are not terminals.
func (e Environment) Profile() termenv.Profile {
	switch {
	case e.NoColor:
		return termenv.Ascii
	case e.CI:
		return termenv.ANSI
	case !e.TTY:
		return termenv.Ascii
	default:
		return output.EnvProfile()
	}
}
