package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/coursebot/core/logger"
	"github.com/m3rciful/coursebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// Dispatcher returns the wired asynchronous sender, nil when sends are synchronous.
func Dispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// Async runs fn through the dispatcher, or inline when none is wired or its queue refuses the job.
func Async(c tele.Context, action, endpoint string, run func() error, opts ...sender.EnqueueOption) error {
	disp := Dispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run, opts...); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return Async(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm}
	return SendText(c, text, opts)
}

// SendMenuMD sends a Markdown message synchronously and returns it, so callers can remember its id.
func SendMenuMD(c tele.Context, text string, markup *tele.ReplyMarkup) (*tele.Message, error) {
	return c.Bot().Send(c.Recipient(), text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup})
}

// EditMD edits a message with Markdown parse mode and optional reply markup.
// An edit that changes nothing is not an error.
func EditMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	err := c.Edit(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm})
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

// DeleteMessage removes a message of the current chat by id. Failures are logged and dropped:
// the message may already be gone or too old to delete.
func DeleteMessage(c tele.Context, messageID int) {
	chat := c.Chat()
	if messageID == 0 || chat == nil {
		return
	}
	msg := &tele.Message{ID: messageID, Chat: chat}
	if err := c.Bot().Delete(msg); err != nil {
		logger.Debug(BuildContext(c), "tg.sender", "delete.failed",
			slog.Int("message_id", messageID),
			slog.String("err", sender.Redact(err)),
		)
	}
}
