// Package menu describes bot menus independently of the transport and renders them
// as Telegram inline keyboards.
package menu

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/coursebot/core/telegram/keyboard"
	"github.com/m3rciful/coursebot/internal/action"
)

// Layout selects how the main buttons of a menu are arranged.
type Layout int

const (
	// Grid puts two buttons per row.
	Grid Layout = iota
	// Column puts one button per row.
	Column
)

// GridWidth is the number of buttons per row in a Grid.
const GridWidth = 2

// Button is a labeled action or, when URL is set, an external link.
type Button struct {
	Label  string
	Action action.Action
	URL    string
}

// Data is the callback data of the button, empty for links.
func (b Button) Data() string {
	if b.URL != "" || b.Action == nil {
		return ""
	}
	return action.Data(b.Action)
}

// Menu is a title with buttons. Extra buttons follow the main ones on rows of their own and
// Back, when set, is always the last row.
type Menu struct {
	Title   string
	Buttons []Button
	Layout  Layout
	Extra   []Button
	Back    *Button
}

// BackTo builds a back button leading to a.
func BackTo(a action.Action) *Button {
	return &Button{Label: "🔙 Back", Action: a}
}

// Rows arranges the menu buttons.
func (m Menu) Rows() [][]Button {
	width := 1
	if m.Layout == Grid {
		width = GridWidth
	}
	rows := keyboard.Chunk(m.Buttons, width)
	for _, b := range m.Extra {
		rows = append(rows, []Button{b})
	}
	if m.Back != nil {
		rows = append(rows, []Button{*m.Back})
	}
	return rows
}

// Render converts a menu into an inline keyboard.
func Render(m Menu) *tele.ReplyMarkup {
	rows := m.Rows()
	inline := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		r := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			r = append(r, keyboard.InlineBtn{Text: b.Label, Data: b.Data(), URL: b.URL})
		}
		inline = append(inline, r)
	}
	return keyboard.InlineButtonsRows(inline...)
}
