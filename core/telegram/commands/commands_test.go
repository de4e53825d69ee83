package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestValidate(t *testing.T) {
	h := func(tele.Context) error { return nil }
	assert.NoError(t, Command{Handler: h, Description: "x"}.Validate("/start"))
	assert.Error(t, Command{Handler: h, Description: "x"}.Validate("start"))
	assert.Error(t, Command{Handler: h, Description: "x"}.Validate("/"))
	assert.Error(t, Command{Description: "x"}.Validate("/start"))
	assert.Error(t, Command{Handler: h, Description: " "}.Validate("/start"))
}

func TestNamesAndVisibility(t *testing.T) {
	cmd := Command{Aliases: []string{"menu", "/home", ""}}
	assert.Equal(t, []string{"/start", "/menu", "/home"}, cmd.Names("/start"))
	assert.True(t, cmd.Visible())
	assert.False(t, Command{Hidden: true}.Visible())
	assert.False(t, Command{AdminOnly: true}.Visible())
}
