// Package logging configures the charmbracelet/log loggers used by the
// contacts worker and its command-line shells.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Commands replace it once flags and config
// are parsed.
var L = clog.NewWithOptions(os.Stderr, clog.Options{
	Prefix: "contacts",
	Level:  clog.WarnLevel,
})

// New returns a logger writing to w at the named level (debug, info, warn,
// error). The empty string means warn.
func New(w io.Writer, level string) (*clog.Logger, error) {
	lvl := clog.WarnLevel
	if level = strings.TrimSpace(level); level != "" {
		var err error
		lvl, err = clog.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}
	return clog.NewWithOptions(w, clog.Options{
		Prefix:          "contacts",
		Level:           lvl,
		ReportTimestamp: lvl <= clog.DebugLevel,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *clog.Logger {
	return clog.New(io.Discard)
}
