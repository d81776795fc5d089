// Package logging builds the leveled logger shared by all components.
package logging

import (
	"os"

	"github.com/withmandala/go-log"
)

var std = New(os.Getenv("DEBUG") != "")

// New returns a coloured stderr logger; debug enables Debugf output.
func New(debug bool) *log.Logger {
	l := log.New(os.Stderr).WithColor()
	if debug {
		l = l.WithDebug()
	}
	return l
}

// Default returns the process-wide logger used when a component is not
// given one explicitly.
func Default() *log.Logger {
	return std
}
