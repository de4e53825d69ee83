// Package commands describes slash commands independently of how they are routed.
package commands

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are rejected for everyone but the configured admin.
	AdminOnly bool
	// Hidden commands are routed but not published in the Telegram command menu.
	Hidden  bool
	Aliases []string
}

// Validate checks that cmd can be registered under name.
func (cmd Command) Validate(name string) error {
	switch {
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return fmt.Errorf("command %q: name must start with a slash", name)
	case cmd.Handler == nil:
		return fmt.Errorf("command %s: nil handler", name)
	case strings.TrimSpace(cmd.Description) == "":
		return fmt.Errorf("command %s: empty description", name)
	}
	return nil
}

// Visible reports whether the command belongs in the public command menu.
func (cmd Command) Visible() bool { return !cmd.Hidden && !cmd.AdminOnly }

// Names returns the canonical name followed by the aliases, all slash-prefixed.
func (cmd Command) Names(name string) []string {
	out := []string{name}
	for _, a := range cmd.Aliases {
		if a = Normalize(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Normalize adds the leading slash to a command name.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

// ErrDuplicate reports a command or alias registered twice.
var ErrDuplicate = errors.New("duplicate command")
