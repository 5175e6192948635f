// Package logging builds the charmbracelet logger used by the commands.
// Settings come from DISVIZ_LOG_* environment variables, with --debug from
// the command line or config taking precedence over the level.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"disviz/internal/layout"
)

// Options configures a logger.
type Options struct {
	Level  log.Level
	Prefix string
	// File, when set, receives the log instead of the writer passed to New.
	File string
}

// OptionsFromEnv reads
//
//	DISVIZ_LOG_LEVEL    debug, info, warn, error (default: info)
//	DISVIZ_LOG_PREFIX   prefix for log messages (default: "disviz ")
//	DISVIZ_LOG_TO_FILE  "1" logs to disviz-<timestamp>.log
//	DISVIZ_LOG_DIR      directory of that file (default: current directory)
//
// debug forces the debug level.
func OptionsFromEnv(debug bool) Options {
	opts := Options{Level: log.InfoLevel, Prefix: os.Getenv("DISVIZ_LOG_PREFIX")}
	if s := os.Getenv("DISVIZ_LOG_LEVEL"); s != "" {
		if lvl, err := log.ParseLevel(s); err == nil {
			opts.Level = lvl
		}
	}
	if debug {
		opts.Level = log.DebugLevel
	}
	if opts.Prefix == "" {
		opts.Prefix = "disviz "
	}
	if os.Getenv("DISVIZ_LOG_TO_FILE") == "1" {
		name := fmt.Sprintf("disviz-%s.log", time.Now().Format("20060102-150405"))
		opts.File = filepath.Join(os.Getenv("DISVIZ_LOG_DIR"), name)
	}
	return opts
}

// LoggerCloser is a logger that owns its output file, if any.
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the log file. Loggers writing elsewhere have nothing to close.
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// New returns a logger writing to w, or to opts.File when set. A file that
// cannot be opened falls back to w.
func New(w io.Writer, opts Options) *LoggerCloser {
	lc := &LoggerCloser{}
	if opts.File != "" {
		if f, err := os.OpenFile(opts.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644); err == nil {
			w = f
			lc.closer = f
		}
	}
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           opts.Level,
		Prefix:          opts.Prefix,
	})
	lc.Logger = lg
	return lc
}

// NewLogger returns a stderr logger configured from the environment.
func NewLogger(debug bool) *LoggerCloser {
	return New(os.Stderr, OptionsFromEnv(debug))
}

// Diagnostics logs layout diagnostics, one record each. Dangling successors
// and empty functions are routine in analyzer output and go to debug; loop
// tree problems are warnings.
func (lc *LoggerCloser) Diagnostics(diags []layout.Diagnostic) {
	for _, d := range diags {
		kv := []any{"kind", d.Kind.String(), "function", d.Function}
		if d.Block != "" {
			kv = append(kv, "block", d.Block)
		}
		if d.Loop != "" {
			kv = append(kv, "loop", d.Loop)
		}
		if d.Detail != "" {
			kv = append(kv, "detail", d.Detail)
		}
		switch d.Kind {
		case layout.DiagUnresolvedSuccessor, layout.DiagEmptyFunction:
			lc.Debug("layout diagnostic", kv...)
		default:
			lc.Warn("layout diagnostic", kv...)
		}
	}
}
