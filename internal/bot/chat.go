package bot

import (
	"github.com/m3rciful/coursebot/core/telegram/callbacks"
	"github.com/m3rciful/coursebot/core/telegram/helpers"
	"github.com/m3rciful/coursebot/core/telegram/middleware"
	"github.com/m3rciful/coursebot/core/telegram/sender"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/delivery"

	tele "gopkg.in/telebot.v4"
)

// chat is what applying a Result needs from the transport, bound to one update.
type chat interface {
	// Pressed reports whether the update is a button press on an existing menu.
	Pressed() bool
	EditMenu(text string, markup *tele.ReplyMarkup) error
	// SendMenu posts a new menu and returns its message id.
	SendMenu(text string, markup *tele.ReplyMarkup) (int, error)
	Notify(text string) error
	Delete(messageID int)
	// Ack answers the button press, if any, with an optional toast.
	Ack(toast string) error
	Deliver(f catalog.FileEntry) error
}

// teleChat implements chat over a telebot context.
type teleChat struct {
	c tele.Context
}

func (t teleChat) Pressed() bool { return t.c.Callback() != nil && t.c.Callback().Message != nil }

func (t teleChat) EditMenu(text string, markup *tele.ReplyMarkup) error {
	return helpers.EditMD(t.c, text, markup)
}

func (t teleChat) SendMenu(text string, markup *tele.ReplyMarkup) (int, error) {
	msg, err := helpers.SendMenuMD(t.c, text, markup)
	if err != nil {
		return 0, err
	}
	middleware.CountMessage(t.c, markup != nil)
	return msg.ID, nil
}

func (t teleChat) Notify(text string) error { return helpers.SendMD(t.c, text) }

func (t teleChat) Delete(messageID int) { helpers.DeleteMessage(t.c, messageID) }

func (t teleChat) Ack(toast string) error {
	if toast == "" {
		return callbacks.Answer(t.c, nil)
	}
	return callbacks.Answer(t.c, &tele.CallbackResponse{Text: toast})
}

// Deliver queues the file on the outbound dispatcher. Delivery is never retried: a failed
// document turns into the manual link instead.
func (t teleChat) Deliver(f catalog.FileEntry) error {
	ctx := helpers.BuildContext(t.c)
	tr := chatTransport{api: t.c.Bot(), to: t.c.Recipient()}
	return helpers.Async(t.c, "send.document", "sendDocument", func() error {
		_, err := delivery.Deliver(ctx, tr, f)
		return err
	}, sender.NoRetry())
}

// messageSender is the part of the telebot API delivery uses.
type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// chatTransport implements delivery.Transport for one recipient.
type chatTransport struct {
	api messageSender
	to  tele.Recipient
}

func (t chatTransport) Notify(text string) error {
	_, err := t.api.Send(t.to, text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	return err
}

func (t chatTransport) SendDocument(url, filename string) error {
	doc := &tele.Document{File: tele.FromURL(url), FileName: filename}
	_, err := t.api.Send(t.to, doc)
	return err
}
