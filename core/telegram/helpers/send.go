package helpers

import (
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends text to the current recipient through the dispatcher.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// EditText replaces the text and markup of the message the callback came from.
// An unchanged message is not an error.
func EditText(c tele.Context, text string, opts *tele.SendOptions) error {
	var err error
	if opts != nil {
		err = c.Edit(text, opts)
	} else {
		err = c.Edit(text)
	}
	if IsNotModified(err) {
		return nil
	}
	return err
}

// Acknowledge answers the pending callback query, optionally with a transient notice.
func Acknowledge(c tele.Context, notice string) error {
	if notice == "" {
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: notice})
}

// IsNotModified reports whether Telegram rejected an edit because nothing changed.
func IsNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
