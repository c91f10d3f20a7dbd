// Package logging wires charmbracelet/log for stencil.
//
// All log output goes to stderr; stdout carries only the resolved
// properties so that `stencil configure --batch > out.toml` stays clean.
//
// Usage:
//
//	// During CLI initialization (PersistentPreRunE):
//	logging.Setup(verbose, quiet, logging.FormatText)
//
//	// In each component:
//	logger := logging.New("resolve")
//	logger.Debug("pass complete", "adopted", 3)
//
// Setup must be called before New: charmbracelet/log copies the default
// logger's state into a child at creation time.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Level aliases for charmbracelet/log levels.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

// Format selects the log line encoding.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

// ParseFormat maps a STENCIL_LOG_FORMAT value to a Format. The empty string
// selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatLogfmt:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q: must be text, json or logfmt", s)
	}
}

// Setup configures the global logging defaults. Call once during CLI
// initialization. verbose enables debug output; quiet limits output to
// errors and wins over verbose.
func Setup(verbose, quiet bool, format Format) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(verbose && !quiet)

	switch format {
	case FormatJSON:
		log.SetFormatter(log.JSONFormatter)
	case FormatLogfmt:
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix. An empty component
// produces a logger without a prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput overrides the output writer for the default logger. Tests use it
// to capture output; restore with t.Cleanup.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
