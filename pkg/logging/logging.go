// Package logging configures the process-wide logrus logger for the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"
)

const (
	EnvLogLevel  = "ZTBUS_LOG_LEVEL"
	EnvLogFormat = "ZTBUS_LOG_FORMAT"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options selects the logger level and output format.
type Options struct {
	Level  string // trace, debug, info, warn, error, off
	Format string // text or json
}

// DefaultOptions logs at info level as text.
func DefaultOptions() Options {
	return Options{Level: "info", Format: FormatText}
}

var configureOnce sync.Once

// Configure applies opts and the environment overrides to the standard
// logger. Only the first call in a process has any effect.
func Configure(opts Options) {
	configureOnce.Do(func() {
		applyEnvOverrides(&opts, os.Getenv)
		if err := Apply(logger.StandardLogger(), opts); err != nil {
			logger.WithError(err).Warnln("logging options ignored")
		}
	})
}

// Apply sets the level and formatter of l.
func Apply(l *logger.Logger, opts Options) error {
	off, level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	formatter, err := NewFormatter(opts.Format)
	if err != nil {
		return err
	}

	l.SetFormatter(formatter)
	if off {
		l.SetOutput(io.Discard)
		l.SetLevel(logger.PanicLevel)
		return nil
	}
	l.SetLevel(level)
	return nil
}

func applyEnvOverrides(opts *Options, getenv func(string) string) {
	if raw := strings.TrimSpace(getenv(EnvLogLevel)); raw != "" {
		if _, _, err := ParseLevel(raw); err == nil {
			opts.Level = raw
		}
	}
	if raw := strings.TrimSpace(getenv(EnvLogFormat)); raw != "" {
		if _, err := NewFormatter(raw); err == nil {
			opts.Format = raw
		}
	}
}

// ParseLevel accepts the logrus level names plus "off" and its aliases. An
// empty string means info.
func ParseLevel(raw string) (off bool, level logger.Level, err error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return false, logger.InfoLevel, nil
	case "off", "disabled", "none":
		return true, logger.PanicLevel, nil
	}
	level, err = logger.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return false, logger.InfoLevel, fmt.Errorf("log level %q: %w", raw, err)
	}
	return false, level, nil
}

// NewFormatter returns the formatter named by format. An empty string means
// text.
func NewFormatter(format string) (logger.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return &logger.TextFormatter{FullTimestamp: true}, nil
	case FormatJSON:
		return &logger.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
