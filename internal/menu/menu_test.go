package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/coursebot/internal/action"
)

func TestRowsGridWithBack(t *testing.T) {
	m := Menu{
		Buttons: []Button{
			{Label: "A", Action: action.SelectYear{Year: "1"}},
			{Label: "B", Action: action.SelectYear{Year: "2"}},
			{Label: "C", Action: action.SelectYear{Year: "3"}},
		},
		Layout: Grid,
		Extra:  []Button{{Label: "Fav", Action: action.FavList{}}},
		Back:   BackTo(action.Home{}),
	}
	rows := m.Rows()
	require.Len(t, rows, 4)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 1)
	assert.Equal(t, "Fav", rows[2][0].Label)
	assert.Equal(t, "🔙 Back", rows[3][0].Label)
}

func TestRowsColumn(t *testing.T) {
	m := Menu{
		Buttons: []Button{{Label: "A"}, {Label: "B"}},
		Layout:  Column,
	}
	rows := m.Rows()
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 1)
}

func TestRender(t *testing.T) {
	m := Menu{
		Title: "x",
		Buttons: []Button{
			{Label: "📘 Signals", Action: action.SearchCourse{Year: "1", Semester: "1", Course: "Signals"}},
			{Label: "📄 a.pdf", URL: "https://example.com/a.pdf"},
		},
		Layout: Column,
		Back:   BackTo(action.Home{}),
	}
	markup := Render(m)
	require.Len(t, markup.InlineKeyboard, 3)
	assert.Equal(t, "search_course:1:1:Signals", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "https://example.com/a.pdf", markup.InlineKeyboard[1][0].URL)
	assert.Empty(t, markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, "home", markup.InlineKeyboard[2][0].Data)
}
