package logger

import (
	"io"
	"log/slog"
	"os"
)

// New JSON-лог в stderr: stdout занят выводом команд.
func New(env string) *slog.Logger {
	return NewTo(os.Stderr, env)
}

func NewTo(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("app", "cmms")
}
