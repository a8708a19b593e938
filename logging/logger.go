// Copyright (C) 2026 PharmaQA Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for cvkit components.
//
// The package wraps the standard library slog with two conventions the
// rest of the module relies on:
//
//   - stderr output by default, so library output never pollutes stdout
//     (reports and fold files are written to explicit paths)
//   - optional JSON file logging, one file per service and day, for runs
//     that need a durable record alongside the generated reports
//
// Library packages never construct loggers themselves; they accept a
// *slog.Logger in their configuration and default to slog.Default().
// This package is the composition point used by cmd/cvkit.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config controls logger construction.
//
// The zero value produces a text logger writing Info and above to stderr.
type Config struct {
	// Level is the minimum level to emit. Default: slog.LevelInfo.
	Level slog.Leveler

	// LogDir, when non-empty, enables JSON file logging in that directory.
	// The file is named "{Service}_{YYYY-MM-DD}.log". A leading "~" is
	// expanded to the user's home directory.
	LogDir string

	// Service is attached to every record as the "service" attribute and
	// used in the log file name. Default: "cvkit".
	Service string

	// JSON switches stderr output to JSON. File output is always JSON.
	JSON bool

	// Quiet disables stderr output entirely. File logging, if configured,
	// still applies.
	Quiet bool
}

// Logger is a slog.Logger with ownership of an optional log file.
type Logger struct {
	*slog.Logger

	file *os.File
}

// New builds a Logger from the configuration.
//
// The returned Logger must be closed with Close when file logging is
// enabled; Close is a no-op otherwise.
func New(cfg Config) *Logger {
	if cfg.Service == "" {
		cfg.Service = "cvkit"
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handlers []slog.Handler
	if !cfg.Quiet {
		if cfg.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	l := &Logger{}
	if cfg.LogDir != "" {
		dir := expandHome(cfg.LogDir)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			name := fmt.Sprintf("%s_%s.log", cfg.Service, time.Now().Format("2006-01-02"))
			f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
			if err == nil {
				l.file = f
				handlers = append(handlers, slog.NewJSONHandler(f, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &fanoutHandler{handlers: handlers}
	}
	handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})

	l.Logger = slog.New(handler)
	return l
}

// Default returns a stderr-only Logger at Info level.
func Default() *Logger {
	return New(Config{})
}

// Close syncs and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	l.file = nil
	return nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
