// Package logutil holds the logging conventions shared by the validators and
// the command line tool: an extra trace level below debug, verbosity parsing,
// and the per-component tag mask that gates detailed dumps.
//
// Nothing here is process-wide; callers build a *slog.Logger and a Tags value
// and pass them around explicitly.
package logutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// LevelTrace is more verbose than slog.LevelDebug.
const LevelTrace slog.Level = -8

// ParseLevel converts a verbosity setting into a slog level.
//
// Accepted forms: "" / "0" / "false" → info, "1" / "true" → debug, any other
// integer n → level -4n (so "2" is trace), or a level name such as "warn" or
// "trace".
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return slog.Level(i * -4), nil
	}
	if strings.EqualFold(s, "trace") {
		return LevelTrace, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at the given level. The trace
// level is rendered as "TRACE".
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey {
				if l, ok := attr.Value.Any().(slog.Level); ok && l <= LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			}
			return attr
		},
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Trace logs at LevelTrace.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.TODO(), LevelTrace, msg, args...)
}
