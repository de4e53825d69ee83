package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/coursebot/core/logger"
	"github.com/m3rciful/coursebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/coursebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

var (
	recentMu      sync.Mutex
	recentUpdates = make(map[int]time.Time)
	lastPrune     time.Time
)

// receiptTTL is how long an update id is remembered for receipt deduplication.
const receiptTTL = 10 * time.Second

func alreadyLogged(updateID int) bool {
	now := time.Now()
	recentMu.Lock()
	defer recentMu.Unlock()
	if now.Sub(lastPrune) > receiptTTL {
		for id, ts := range recentUpdates {
			if now.Sub(ts) > receiptTTL {
				delete(recentUpdates, id)
			}
		}
		lastPrune = now
	}
	if _, ok := recentUpdates[updateID]; ok {
		return true
	}
	recentUpdates[updateID] = now
	return false
}

// LoggerMiddleware stores the update's logging context and, subject to debug sampling, logs one
// receipt line per update. Receipts are deduplicated by update_id because routes wrap their
// handlers with this middleware too.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, ok := tghelpers.ContextFrom(c); ok {
			return next(c)
		}
		meta := tghelpers.UpdateMeta(c)
		if meta.RID == "" {
			meta.RID = logger.BuildRID(meta.UpdateID, meta.ChatID, meta.UserID)
		}
		c.Set("rid", meta.RID)
		ctx := logger.WithLogger(logger.WithMeta(context.Background(), meta), logger.TG)
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && !alreadyLogged(meta.UpdateID) {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok"), slog.String("kind", UpdateKind(c.Update()))}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}
	if cb := c.Callback(); cb != nil {
		key, payload := callbacks.Split(callbacks.Data(cb))
		attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	} else if t := c.Text(); t != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
	}
	return attrs
}
