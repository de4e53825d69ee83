package logger

import (
	"context"
	"log/slog"
)

// Meta identifies the Telegram update a log line belongs to.
type Meta struct {
	RID      string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
}

type ctxKey int

const (
	metaKey ctxKey = iota
	loggerKey
)

// WithMeta stores update metadata in ctx. The structured handler adds it to every line logged
// with that context.
func WithMeta(ctx context.Context, m Meta) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.RID == "" && (m.UpdateID != 0 || m.ChatID != 0 || m.UserID != 0) {
		m.RID = BuildRID(m.UpdateID, m.ChatID, m.UserID)
	}
	return context.WithValue(ctx, metaKey, m)
}

// MetaFrom returns the update metadata of ctx, zero when none was stored.
func MetaFrom(ctx context.Context) Meta {
	if ctx == nil {
		return Meta{}
	}
	m, _ := ctx.Value(metaKey).(Meta)
	return m
}

// WithHandler records the handler name in the metadata of ctx.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	m := MetaFrom(ctx)
	m.Handler = handler
	return WithMeta(ctx, m)
}

// WithLogger stores log in ctx for LogEvent calls that pass no logger.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// attrs lists the non-zero metadata fields.
func (m Meta) attrs() []slog.Attr {
	var out []slog.Attr
	if m.RID != "" {
		out = append(out, slog.String("rid", m.RID))
	}
	if m.UserID != 0 {
		out = append(out, slog.Int64("user_id", m.UserID))
	}
	if m.UpdateID != 0 {
		out = append(out, slog.Int("update_id", m.UpdateID))
	}
	if m.ChatID != 0 {
		out = append(out, slog.Int64("chat_id", m.ChatID))
	}
	if m.Handler != "" {
		out = append(out, slog.String("handler", m.Handler))
	}
	return out
}
