package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/coursebot/core/telegram"
	"github.com/m3rciful/coursebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text and non-text messages.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes routes plain messages. Slash text is matched against command aliases, anything
// else goes to the registry's text fallback. Unknown slash commands go to UnknownText when set.
// Documents, photos and stickers go to UnknownMedia.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		isCommand := strings.HasPrefix(text, "/")
		if reg != nil && isCommand {
			if key, cmd, ok := reg.LookupCommand(commandName(text)); ok && cmd.Handler != nil && !cmd.AdminOnly {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, func() error {
					return cmd.Handler(c)
				})
			}
		}
		if reg != nil && !(isCommand && opts.UnknownText != nil) {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logSkipped(c, "unknown_text", start)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unexpected_media", start, func() error {
				return opts.UnknownMedia(c)
			})
		}
		logSkipped(c, "unexpected_media", start)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(handler)},
		{Endpoint: tele.OnDocument, Handler: wrap(mediaHandler)},
		{Endpoint: tele.OnPhoto, Handler: wrap(mediaHandler)},
		{Endpoint: tele.OnSticker, Handler: wrap(mediaHandler)},
	}
}

// commandName strips arguments and a "@botname" suffix from slash text.
func commandName(text string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@")
	return name
}
