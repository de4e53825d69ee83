package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/m3rciful/coursebot/core/logger"
	"github.com/m3rciful/coursebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// NamedCommand is a registered command with its canonical name.
type NamedCommand struct {
	Name string
	commands.Command
}

// Registry holds bot commands, in registration order, and callback handlers by key.
type Registry struct {
	mu        sync.RWMutex
	commands  []NamedCommand
	names     map[string]int // canonical names and aliases -> index in commands
	callbacks map[string]tele.HandlerFunc

	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry. Unknown callbacks are acknowledged without text.
func NewRegistry() *Registry {
	return &Registry{
		names:            make(map[string]int),
		callbacks:        make(map[string]tele.HandlerFunc),
		callbackNotFound: func(tele.Context) error { return nil },
	}
}

// RegisterCommand adds cmd under name. Neither name nor any alias may already be taken.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if err := cmd.Validate(name); err != nil {
		return r.skip("register.command.skip", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	names := cmd.Names(name)
	for _, n := range names {
		if _, taken := r.names[n]; taken {
			return r.skip("register.command.duplicate", n, fmt.Errorf("%w: %s", commands.ErrDuplicate, n))
		}
	}
	for _, n := range names {
		r.names[n] = len(r.commands)
	}
	r.commands = append(r.commands, NamedCommand{Name: name, Command: cmd})
	return nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []NamedCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]NamedCommand(nil), r.commands...)
}

// ListCommands returns the command menu entries in registration order, optionally only the visible ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for _, c := range r.Commands() {
		if visibleOnly && !c.Visible() {
			continue
		}
		list = append(list, tele.Command{Text: c.Name, Description: c.Description})
	}
	return list
}

// LookupCommand resolves a name or alias, with or without the slash, to its command.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.names[commands.Normalize(name)]
	if !ok {
		return "", commands.Command{}, false
	}
	c := r.commands[i]
	return c.Name, c.Command, true
}

// RegisterCallback maps a callback key to handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		return r.skip("register.callback.skip", key, fmt.Errorf("callback %q: invalid registration", key))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return r.skip("register.callback.duplicate", key, fmt.Errorf("callback already registered: %s", key))
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler registered for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the sorted callback keys.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetCallbackNotFound replaces the handler for unknown callback keys; nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the handler for unknown callback keys.
func (r *Registry) CallbackNotFound() tele.HandlerFunc { return r.callbackNotFound }

// SetTextFallback sets the handler for text that is not a command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }

// TextFallback returns the handler for text that is not a command.
func (r *Registry) TextFallback() tele.HandlerFunc { return r.textFallback }

func (r *Registry) skip(event, name string, err error) error {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, event,
		slog.String("name", name),
		slog.String("err", err.Error()),
	)
	return err
}

// InitBotCommands publishes the visible commands to the Telegram command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
