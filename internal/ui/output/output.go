// Package output builds the termenv outputs the logger and the progress
// renderer color their lines with.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// noColor reports whether the user opted out of colors.
func noColor() bool {
	return os.Getenv("NO_COLOR") != ""
}

// EnvProfile returns the profile the terminal advertises, or Ascii under NO_COLOR.
func EnvProfile() termenv.Profile {
	if noColor() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ANSIProfile returns basic ANSI colors, or Ascii under NO_COLOR.
func ANSIProfile() termenv.Profile {
	if noColor() {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New returns an Output on w using the terminal's profile.
func New(w io.Writer) *termenv.Output {
	return WithProfile(w, EnvProfile())
}

// WithProfile returns an Output on w pinned to p. A nil w means stderr.
// The output is treated as a terminal so p alone decides whether escapes are written.
func WithProfile(w io.Writer, p termenv.Profile) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(p), termenv.WithTTY(true))
}
