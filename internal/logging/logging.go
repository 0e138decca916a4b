// Package logging is the leveled key/value logger shared by the server
// and the client CLI.
//
//	logging.Info("event created", "id", ev.ID, "category", ev.Category)
//	logging.Error("remote create failed", err, "id", ev.ID)
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetOutput redirects all log output, e.g. to silence logs in the CLI.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// SetLevel accepts "debug", "info", "warn" or "error"; anything else means info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, kv ...any) {
	current().Log(context.Background(), slog.LevelDebug, msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Log(context.Background(), slog.LevelInfo, msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Log(context.Background(), slog.LevelWarn, msg, kv...)
}

// Error logs msg at error level with err prepended to the key/value list.
func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	current().Log(context.Background(), slog.LevelError, msg, extended...)
}
