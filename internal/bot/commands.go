package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/coursebot/core/buildinfo"
	"github.com/m3rciful/coursebot/core/telegram/helpers"
	"github.com/m3rciful/coursebot/core/telegram/sender"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/search"

	tele "gopkg.in/telebot.v4"
)

// HelpText is the reply to /help.
var HelpText = strings.Join([]string{
	"📚 *Course Resources Bot*",
	"",
	"/start - browse by year, semester and course",
	"/favorites - your saved courses",
	"",
	fmt.Sprintf("🔍 Type at least %d characters to search course and file names.", search.MinQueryLength),
	"Type *clear* to remove the last menu.",
}, "\n")

func (b *Bot) onHelp(c tele.Context) error {
	return helpers.SendMD(c, HelpText)
}

func (b *Bot) onStats(c tele.Context) error {
	var ds *sender.Stats
	if d := helpers.Dispatcher(); d != nil {
		st := d.Stats()
		ds = &st
	}
	return helpers.SendText(c, statsText(b.engine.Catalog().Stats(), b.sessions.Len(), ds, time.Since(b.started)))
}

func statsText(cs catalog.Stats, sessions int, ds *sender.Stats, uptime time.Duration) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "version: %s (%s)\n", buildinfo.Version, buildinfo.Commit)
	fmt.Fprintf(&sb, "uptime: %s\n", uptime.Round(time.Second))
	fmt.Fprintf(&sb, "catalog: %d years, %d semesters, %d courses, %d files\n",
		cs.Years, cs.Semesters, cs.Courses, cs.Files)
	fmt.Fprintf(&sb, "sessions: %d", sessions)
	if ds != nil {
		fmt.Fprintf(&sb, "\nsender: %d queued, %d sent, %d failed", ds.Queued, ds.Sent, ds.Failed)
	}
	return sb.String()
}
