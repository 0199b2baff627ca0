// Package logging configures the logrus logger used across composectl.
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// errInvalidLogFormat indicates an unsupported log format was requested.
	errInvalidLogFormat = errors.New("invalid log format")
	// errInvalidLogLevel indicates the log level could not be parsed.
	errInvalidLogLevel = errors.New("invalid log level")
)

// Formats lists the accepted log format names.
var Formats = []string{"auto", "json", "logfmt", "pretty"}

// Options holds the logging settings.
type Options struct {
	Level   string
	Format  string
	NoColor bool

	// Verbose forces at least debug level.
	Verbose bool

	// Output receives log entries. Nil leaves the logger's output alone.
	Output io.Writer
}

// Setup applies opts to the logrus standard logger.
func Setup(opts Options) error {
	return Configure(logrus.StandardLogger(), opts)
}

// Configure applies opts to logger.
func Configure(logger *logrus.Logger, opts Options) error {
	formatter, err := formatterFor(opts.Format, opts.NoColor)
	if err != nil {
		return err
	}

	rawLevel := opts.Level
	if rawLevel == "" {
		rawLevel = logrus.InfoLevel.String()
	}
	level, err := logrus.ParseLevel(rawLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}
	if opts.Verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}

	logger.SetFormatter(formatter)
	logger.SetLevel(level)
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	}

	return nil
}

func formatterFor(format string, noColor bool) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "auto":
		return &logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		}, nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	case "logfmt":
		return &logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		}, nil
	case "pretty":
		return &logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errInvalidLogFormat, format)
	}
}
