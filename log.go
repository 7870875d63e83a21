package vkbase

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().Timestamp().Str("lib", "vkbase").Logger()

// SetLogger replaces the package logger. Examples call this when they want
// the library output routed through their own writer.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// SetLevel adjusts the package logger's minimum level.
func SetLevel(level zerolog.Level) {
	logger = logger.Level(level)
}

// Log returns a child logger tagged with a component name.
func Log(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// ParseLevel maps a config level string onto a zerolog level, defaulting to
// info for anything unknown.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
