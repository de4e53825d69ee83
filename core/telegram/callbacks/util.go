// Package callbacks decodes inline button callback data.
//
// Buttons carry raw colon-delimited ids such as "year:1" or "fav:toggle:1:2:Signals".
// The segment before the first colon is the routing key.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Separator splits routing key and arguments inside callback data.
const Separator = ":"

// Split returns the routing key and the remaining payload of raw callback data.
// Telebot's "\f<unique>|<payload>" encoding is accepted too, mapping unique to the key.
func Split(data string) (string, string) {
	// \f counts as space for TrimSpace.
	if rest, ok := strings.CutPrefix(strings.TrimLeft(data, " "), "\f"); ok {
		key, payload, _ := strings.Cut(strings.TrimSpace(rest), "|")
		return strings.TrimSpace(key), payload
	}
	data = strings.TrimSpace(data)
	key, payload, _ := strings.Cut(data, Separator)
	return strings.TrimSpace(key), payload
}

// Data returns the raw callback data, preferring Unique when telebot already decoded it.
func Data(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		if cb.Data == "" {
			return cb.Unique
		}
		return cb.Unique + Separator + cb.Data
	}
	return strings.TrimSpace(cb.Data)
}

// Key returns the routing key of the callback in c, or "" for non-callback updates.
func Key(c tele.Context) string {
	key, _ := Split(Data(c.Callback()))
	return key
}

const answeredKey = "cb_answered"

// Answer responds to the callback in c and marks it answered so routers skip their default
// acknowledgement. Telegram accepts one answer per callback.
func Answer(c tele.Context, resp *tele.CallbackResponse) error {
	if c.Callback() == nil || Answered(c) {
		return nil
	}
	c.Set(answeredKey, true)
	if resp == nil {
		return c.Respond()
	}
	return c.Respond(resp)
}

// Answered reports whether Answer already ran for c.
func Answered(c tele.Context) bool {
	v, _ := c.Get(answeredKey).(bool)
	return v
}
