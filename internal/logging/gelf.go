package logging

import (
	"context"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// Syslog severities used by GELF.
const (
	gelfLevelError = 3
	gelfLevelWarn  = 4
	gelfLevelInfo  = 6
	gelfLevelDebug = 7
)

// gelfWriter is the part of gelf.Writer the handler needs. Tests swap in
// a fake.
type gelfWriter interface {
	WriteMessage(m *gelf.Message) error
	Close() error
}

// GelfHandler is a slog.Handler that ships records to a Graylog server
// over GELF UDP. Records are chunked and sent by go-gelf; a send failure
// is returned to the caller and otherwise ignored, logging must not take
// the process down with it.
type GelfHandler struct {
	writer gelfWriter
	host   string
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewGelfHandler connects to a Graylog endpoint ("host:port") and returns
// a handler that forwards records at or above the given level. The host
// argument names this process in Graylog.
func NewGelfHandler(addr, host string, level slog.Leveler) (*GelfHandler, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, err
	}
	return &GelfHandler{writer: w, host: host, level: level}, nil
}

// Enabled reports whether the handler handles records at the given level.
func (h *GelfHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

// Handle converts the record to a GELF message and writes it out.
func (h *GelfHandler) Handle(_ context.Context, r slog.Record) error {
	extra := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		putExtra(extra, h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putExtra(extra, h.prefix, a)
		return true
	})

	return h.writer.WriteMessage(&gelf.Message{
		Version:  "1.1",
		Host:     h.host,
		Short:    r.Message,
		TimeUnix: float64(r.Time.UnixNano()) / 1e9,
		Level:    syslogLevel(r.Level),
		Extra:    extra,
	})
}

// WithAttrs returns a handler that includes the given attributes on every
// record.
func (h *GelfHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a handler that qualifies subsequent attribute keys
// with the group name.
func (h *GelfHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// Close shuts down the underlying UDP writer.
func (h *GelfHandler) Close() error {
	return h.writer.Close()
}

// putExtra flattens one attribute into the GELF additional-field map.
// GELF requires additional field names to start with an underscore.
func putExtra(extra map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			putExtra(extra, prefix+a.Key+".", ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	extra["_"+prefix+a.Key] = a.Value.Any()
}

func syslogLevel(level slog.Level) int32 {
	switch {
	case level >= slog.LevelError:
		return gelfLevelError
	case level >= slog.LevelWarn:
		return gelfLevelWarn
	case level >= slog.LevelInfo:
		return gelfLevelInfo
	default:
		return gelfLevelDebug
	}
}
