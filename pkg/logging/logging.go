// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for the assistant client.
//
// It is a thin layer over the standard library's slog package with two
// additions the client needs:
//
//   - multi-destination output: human-readable text on stderr for CLI
//     use, plus an optional JSON log file for later inspection;
//   - a recording sink (BufferedSink) so tests can assert on telemetry,
//     in particular the decode-failure reports the stream decoder emits.
//
// The chat packages accept a plain *slog.Logger, so any slog handler
// can stand in; this package only supplies the wiring.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// Configuration
// =============================================================================

// Config configures a Logger. The zero value logs Info and above as
// text to stderr, which is the right default for interactive CLI use.
type Config struct {
	// Level is the minimum level written to any destination.
	Level slog.Level

	// LogDir enables file logging when set. Logs go to
	// "{Service}_{YYYY-MM-DD}.log" inside the directory, always as
	// JSON. Supports ~ expansion. The directory is created if missing.
	LogDir string

	// Service is attached to every entry as the "service" attribute.
	Service string

	// JSON switches the stderr stream to JSON format. File output is
	// JSON regardless.
	JSON bool

	// Quiet suppresses stderr output entirely. Useful when the TUI
	// owns the terminal and stray log lines would corrupt the screen.
	Quiet bool
}

// =============================================================================
// Logger
// =============================================================================

// Logger bundles an slog.Logger with the file handle it may own.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New builds a Logger from config. Call Close when done if LogDir was
// set, so the file is flushed and released.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level}

	var handlers []slog.Handler
	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	logger := &Logger{}
	if config.LogDir != "" {
		if file, err := openLogFile(config.LogDir, config.Service); err == nil {
			logger.file = file
			handlers = append(handlers, slog.NewJSONHandler(file, opts))
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		// Quiet with no file still needs a valid handler.
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(127)})
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns a text-to-stderr logger at Info level.
func Default() *Logger {
	return New(Config{Service: "asistan"})
}

// Slog exposes the underlying slog.Logger for injection into packages
// that take one.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
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
	return nil
}

// openLogFile creates the log directory and opens today's service log
// in append mode.
func openLogFile(dir, service string) (*os.File, error) {
	dir = expandPath(dir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	if service == "" {
		service = "asistan"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// =============================================================================
// Multi-Handler
// =============================================================================

// multiHandler fans one record out to several slog handlers, letting
// stderr stay human-readable while the file stays machine-parseable.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// =============================================================================
// Buffered Sink
// =============================================================================

// Record is one captured log entry.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedSink is an slog.Handler that records every entry it receives.
// It backs test assertions about telemetry, e.g. that the decoder
// reported a malformed frame without surfacing it to the user.
//
// Handlers derived through WithAttrs share the parent's buffer, so the
// sink a test holds sees entries from child loggers too.
type BufferedSink struct {
	base   []slog.Attr
	shared *recordBuffer
}

type recordBuffer struct {
	mu      sync.Mutex
	records []Record
}

// NewBufferedSink creates an empty sink.
func NewBufferedSink() *BufferedSink {
	return &BufferedSink{shared: &recordBuffer{}}
}

func (s *BufferedSink) Enabled(context.Context, slog.Level) bool {
	return true
}

func (s *BufferedSink) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(s.base))
	for _, a := range s.base {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	s.shared.mu.Lock()
	s.shared.records = append(s.shared.records, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	s.shared.mu.Unlock()
	return nil
}

func (s *BufferedSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	base := make([]slog.Attr, 0, len(s.base)+len(attrs))
	base = append(base, s.base...)
	base = append(base, attrs...)
	return &BufferedSink{base: base, shared: s.shared}
}

func (s *BufferedSink) WithGroup(string) slog.Handler {
	return s
}

// Records returns a copy of everything captured so far.
func (s *BufferedSink) Records() []Record {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	out := make([]Record, len(s.shared.records))
	copy(out, s.shared.records)
	return out
}

var _ slog.Handler = (*BufferedSink)(nil)
