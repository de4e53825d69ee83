package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/coursebot/core/telegram"
	"github.com/m3rciful/coursebot/core/telegram/callbacks"
	"github.com/m3rciful/coursebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry by the key
// before the first colon of the callback data. Every callback is acknowledged once: handlers
// may answer with text via callbacks.Answer, otherwise an empty answer is sent afterwards.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.Key(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		run, ok := reg.GetCallback(key)
		if !ok || run == nil {
			run = reg.CallbackNotFound()
			if run == nil {
				run = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
		}

		return handleWithSummary(c, name, start, func() error {
			defer func() { _ = callbacks.Answer(c, nil) }()
			if run == nil {
				return nil
			}
			return run(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
