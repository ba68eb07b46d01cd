// Package logging builds the zerolog logger every command runs with.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
)

// Options picks the level and destination.
type Options struct {
	Level string
	// File receives the log when set. Otherwise logs go to stderr.
	File string
	// Quiet disables the stderr fallback, for screens that own the
	// terminal.
	Quiet bool
}

// New returns the logger and a func that closes any log file.
func New(opts Options) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("logging: %w", err)
		}
		level = l
	}

	if opts.File != "" {
		path, err := homedir.Expand(opts.File)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("logging: expand file: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("logging: open file: %w", err)
		}
		return zerolog.New(f).Level(level).With().Timestamp().Logger(), f.Close, nil
	}

	if opts.Quiet {
		return zerolog.Nop(), noop, nil
	}
	return Console(os.Stderr, level), noop, nil
}

// Console writes human-readable lines to w, colored only on a terminal.
func Console(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: !isTerminal(w)}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
