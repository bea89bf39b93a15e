// Package render adapts a rendered line's minimal ANSI string for
// real terminal hosts: downgrading colors to whatever the host
// actually supports, and producing a plain-text form for logging.
// This is strictly a presentation concern layered after
// lineterm.Terminal.RenderLine; it never touches the cell model.
package render

import (
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/ansi"
)

// Downgrader rewrites a rendered line's SGR sequences to the color
// depth the destination writer's terminal actually supports before
// writing it, falling through untouched when the profile is already
// truecolor.
type Downgrader struct {
	w       colorprofile.Writer
	profile colorprofile.Profile
}

// NewDowngrader detects dst's color profile from its environment (or
// assumes no color support if dst isn't a terminal) and returns a
// Downgrader writing through it.
func NewDowngrader(dst io.Writer) *Downgrader {
	profile := colorprofile.Detect(dst, os.Environ())
	return &Downgrader{
		w:       colorprofile.Writer{Forward: dst, Profile: profile},
		profile: profile,
	}
}

// WriteLine writes line followed by '\n' to the underlying writer,
// downgrading any SGR sequences in line to the detected profile.
func (d *Downgrader) WriteLine(line string) error {
	_, err := d.w.Write([]byte(line + "\n"))
	return err
}

// Profile reports the color profile this Downgrader downgrades to.
func (d *Downgrader) Profile() colorprofile.Profile {
	return d.profile
}

// PlainText strips every ANSI escape sequence from a rendered line,
// for logging or anywhere color markup would just be noise.
func PlainText(line string) string {
	return ansi.Strip(line)
}
