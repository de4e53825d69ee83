package nav

import (
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/menu"
)

// Kind tells the transport what to do with a Result.
type Kind int

const (
	// KindMenu shows Menu, editing the pressed menu in place unless Fresh is set.
	KindMenu Kind = iota
	// KindFile delivers File.
	KindFile
	// KindNotice sends Notice as a plain chat message.
	KindNotice
	// KindClear deletes DeleteMessageID and sends nothing.
	KindClear
	// KindAck only acknowledges the button press, optionally with Toast.
	KindAck
)

func (k Kind) String() string {
	switch k {
	case KindMenu:
		return "menu"
	case KindFile:
		return "file"
	case KindNotice:
		return "notice"
	case KindClear:
		return "clear"
	case KindAck:
		return "ack"
	}
	return "unknown"
}

// Result is the outbound effect of one action.
type Result struct {
	Kind   Kind
	Menu   menu.Menu
	File   catalog.FileEntry
	Notice string
	Toast  string

	// Fresh asks for a new message rather than an edit of the pressed one.
	Fresh bool
	// DeleteMessageID is a stale menu to delete (best effort) before anything is sent.
	DeleteMessageID int
}
