package helpers

import (
	"context"

	"github.com/m3rciful/coursebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "logger_ctx"

// StoreContext attaches ctx to c for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the context stored in c by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok
}

// UpdateMeta describes the update in c for log correlation.
func UpdateMeta(c tele.Context) logger.Meta {
	m := logger.Meta{UpdateID: c.Update().ID}
	if user := c.Sender(); user != nil {
		m.UserID = user.ID
	}
	if chat := c.Chat(); chat != nil {
		m.ChatID = chat.ID
	}
	m.RID, _ = c.Get("rid").(string)
	return m
}

// BuildContext returns the logging context of c, creating and storing it on first use.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}
	ctx := logger.WithMeta(context.Background(), UpdateMeta(c))
	ctx = logger.WithLogger(ctx, logger.TG)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler enriches stored context with handler metadata for downstream logs.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	StoreContext(c, ctx)
	return ctx
}
