package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/telegram/commands"
	"github.com/m3rciful/royaldns/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// UnsupportedNotice answers callbacks when no callback handler is registered.
const UnsupportedNotice = "Unsupported action"

var (
	ErrInvalidCommand   = errors.New("telegram: command needs a /name, handler and description")
	ErrDuplicateCommand = errors.New("telegram: command already registered")
)

// Registry holds bot commands, the callback handler and fallbacks.
type Registry struct {
	commands         map[string]commands.Command
	aliases          map[string]string
	callbackHandler  tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry returns an empty Registry whose callback fallback answers with UnsupportedNotice.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		aliases:  make(map[string]string),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: UnsupportedNotice})
		},
	}
}

// RegisterCommand adds a slash command and its aliases.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if !strings.HasPrefix(name, "/") || len(name) < 2 || cmd.Handler == nil || cmd.Description == "" {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, name)
	}
	if _, dup := r.commands[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	for _, alias := range cmd.Aliases {
		key := "/" + strings.TrimPrefix(strings.TrimSpace(alias), "/")
		if other, dup := r.aliases[key]; dup || r.commands[key].Handler != nil {
			return fmt.Errorf("%w: alias %s of %s (taken by %s)", ErrDuplicateCommand, alias, name, other)
		}
		r.aliases[key] = name
	}
	r.commands[name] = cmd
	logger.TWire.LogAttrs(context.Background(), slog.LevelDebug, "register.command",
		slog.String("name", name),
		slog.Int("aliases", len(cmd.Aliases)),
	)
	return nil
}

// ListCommands returns the bot menu entries sorted by name, without hidden ones when visibleOnly.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if visibleOnly && cmd.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves a command name or alias, with or without the slash.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", commands.Command{}, false
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", commands.Command{}, false
	}
	return name, cmd, true
}

// Commands returns the registered commands keyed by /name.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

func (r *Registry) SetCallbackHandler(h tele.HandlerFunc) { r.callbackHandler = h }
func (r *Registry) CallbackHandler() tele.HandlerFunc     { return r.callbackHandler }

// SetCallbackNotFound replaces the fallback used when no callback handler is set; nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

func (r *Registry) CallbackNotFound() tele.HandlerFunc { return r.callbackNotFound }
func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }
func (r *Registry) TextFallback() tele.HandlerFunc     { return r.textFallback }

// SetupCommands publishes the visible commands in the Telegram command menu.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", netutil.Redact(err)),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelDebug, "register.commands.set",
		slog.Int("count", len(list)),
	)
}
