package keyboard

import (
	"log/slog"

	"github.com/m3rciful/coursebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// MaxCallbackData is the Telegram limit for inline button callback data, in bytes.
const MaxCallbackData = 64

// InlineBtn describes a convenience wrapper for inline button properties.
// URL buttons open a link; otherwise Data is sent back as raw callback data.
type InlineBtn struct {
	Text string
	Data string
	URL  string
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			r = append(r, inlineButton(btn))
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Chunk splits items into rows with up to n items per row; n <= 1 yields one item per row.
func Chunk[T any](items []T, n int) [][]T {
	if n < 1 {
		n = 1
	}
	rows := make([][]T, 0, (len(items)+n-1)/n)
	for i := 0; i < len(items); i += n {
		end := i + n
		if end > len(items) {
			end = len(items)
		}
		rows = append(rows, items[i:end])
	}
	return rows
}

func inlineButton(btn InlineBtn) tele.InlineButton {
	if btn.URL != "" {
		return tele.InlineButton{Text: btn.Text, URL: btn.URL}
	}
	if len(btn.Data) > MaxCallbackData {
		// Telegram rejects the whole keyboard; keep the log so the catalog entry can be renamed.
		logger.TG.Warn("callback data too long",
			slog.String("event", "keyboard.data_too_long"),
			slog.String("payload", logger.SanitizeLimit(btn.Data, 128)),
			slog.Int("count", len(btn.Data)),
		)
	}
	return tele.InlineButton{Text: btn.Text, Data: btn.Data}
}
