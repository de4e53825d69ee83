// Package bot connects the navigation engine to Telegram: it registers commands, callbacks and
// the text fallback, keeps one conversation per user and turns engine results into messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/coursebot/core/logger"
	tg "github.com/m3rciful/coursebot/core/telegram"
	"github.com/m3rciful/coursebot/core/telegram/callbacks"
	"github.com/m3rciful/coursebot/core/telegram/commands"
	"github.com/m3rciful/coursebot/core/telegram/helpers"
	"github.com/m3rciful/coursebot/core/telegram/router"
	"github.com/m3rciful/coursebot/core/telegram/state"
	"github.com/m3rciful/coursebot/internal/action"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/menu"
	"github.com/m3rciful/coursebot/internal/nav"

	tele "gopkg.in/telebot.v4"
)

// Chat texts owned by the adapter.
const (
	TextLimited = "⏳ Too many requests, please slow down."
	TextPanic   = "⚠️ Something went wrong. Send /start to begin again."
	TextMedia   = "🔍 Type at least 3 characters of a course or file name to search, or send /start for the menu."
)

// Bot is the transport adapter.
type Bot struct {
	engine   *nav.Engine
	sessions *state.Store[nav.Conversation]
	started  time.Time
}

// New builds an adapter over engine with an empty session store.
func New(engine *nav.Engine) *Bot {
	return &Bot{
		engine:   engine,
		sessions: state.NewStore[nav.Conversation](),
		started:  time.Now(),
	}
}

// Register wires commands, callbacks and the text fallback into reg.
func (b *Bot) Register(reg *tg.Registry) error {
	cmds := []tg.NamedCommand{
		{Name: "/start", Command: commands.Command{
			Handler:     b.onAction(func(tele.Context) action.Action { return action.Home{Fresh: true} }),
			Description: "Open the main menu",
			Aliases:     []string{"/menu"},
		}},
		{Name: "/favorites", Command: commands.Command{
			Handler:     b.onAction(func(tele.Context) action.Action { return action.FavList{} }),
			Description: "Show your favorite courses",
		}},
		{Name: "/help", Command: commands.Command{Handler: b.onHelp, Description: "How to use the bot"}},
		{Name: "/stats", Command: commands.Command{
			Handler:     b.onStats,
			Description: "Runtime statistics",
			AdminOnly:   true,
			Hidden:      true,
		}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.Name, c.Command); err != nil {
			return err
		}
	}

	for _, key := range action.Keys {
		if err := reg.RegisterCallback(key, b.onCallback); err != nil {
			return fmt.Errorf("register callback %s: %w", key, err)
		}
	}
	reg.SetCallbackNotFound(func(tele.Context) error { return nil })
	reg.SetTextFallback(b.onAction(func(c tele.Context) action.Action { return action.ParseText(c.Text()) }))

	router.RegisterErrorCode(nav.ErrStaleAction, "STALE_ACTION")
	router.RegisterErrorCode(catalog.ErrCourseNotFound, "COURSE_NOT_FOUND")
	router.RegisterErrorCode(action.ErrUnknown, "UNKNOWN_ACTION")
	return nil
}

// OnLimited answers updates dropped by the rate limiter.
func (b *Bot) OnLimited(c tele.Context) error {
	if c.Callback() != nil {
		return callbacks.Answer(c, &tele.CallbackResponse{Text: TextLimited})
	}
	return nil
}

// OnPanic tells the user a handler crashed.
func (b *Bot) OnPanic(c tele.Context) error {
	if c.Callback() != nil {
		_ = callbacks.Answer(c, nil)
	}
	return helpers.SendText(c, TextPanic)
}

// OnMedia answers messages the bot cannot search with.
func (b *Bot) OnMedia(c tele.Context) error {
	return helpers.SendText(c, TextMedia)
}

func (b *Bot) onCallback(c tele.Context) error {
	act, err := action.Parse(callbacks.Data(c.Callback()))
	if err != nil {
		return err
	}
	return b.dispatch(c, act)
}

func (b *Bot) onAction(build func(tele.Context) action.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		return b.dispatch(c, build(c))
	}
}

func (b *Bot) dispatch(c tele.Context, act action.Action) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	return b.process(helpers.BuildContext(c), teleChat{c: c}, user.ID, act)
}

// process runs act for one user while holding that user's session. The engine error is only
// logged by the caller; the user already got the reply from the Result.
func (b *Bot) process(ctx context.Context, ch chat, userID int64, act action.Action) error {
	return b.sessions.Update(userID, func(conv *nav.Conversation) error {
		next, res, err := b.engine.Handle(ctx, strconv.FormatInt(userID, 10), *conv, act)
		applyErr := apply(ch, &next, res)
		*conv = next
		if applyErr != nil {
			logger.Warn(ctx, "nav", "apply.failed",
				slog.String("action", act.Name()),
				slog.String("result", res.Kind.String()),
				slog.String("state", next.State()),
				slog.String("err", applyErr.Error()),
			)
		}
		return errors.Join(err, applyErr)
	})
}

// apply performs the outbound effect of res. Menu messages sent anew are tracked in conv.
func apply(ch chat, conv *nav.Conversation, res nav.Result) error {
	switch res.Kind {
	case nav.KindMenu:
		markup := menu.Render(res.Menu)
		if ch.Pressed() && !res.Fresh {
			err := ch.EditMenu(res.Menu.Title, markup)
			if err == nil {
				return nil
			}
			logger.Component("nav").Debug("edit failed, sending new menu",
				slog.String("event", "nav.edit_fallback"),
				slog.String("err", err.Error()),
			)
		}
		if res.DeleteMessageID != 0 {
			ch.Delete(res.DeleteMessageID)
		}
		id, err := ch.SendMenu(res.Menu.Title, markup)
		if err != nil {
			return errors.Join(err, ch.Notify(nav.NoticeMenuFailed))
		}
		conv.LastMenuMessageID = id
		return nil

	case nav.KindFile:
		return ch.Deliver(res.File)

	case nav.KindNotice:
		return ch.Notify(res.Notice)

	case nav.KindClear:
		ch.Delete(res.DeleteMessageID)
		return nil

	case nav.KindAck:
		return ch.Ack(res.Toast)
	}
	return nil
}
