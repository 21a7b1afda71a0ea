package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/royaldns/core/logger"
	tghelpers "github.com/m3rciful/royaldns/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// PanicNotice is shown on a callback whose handler panicked.
const PanicNotice = "Error occurred."

// Recover turns a handler panic into a logged error and answers a pending
// callback so the client stops its loading indicator.
func Recover(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			ctx := tghelpers.BuildContext(c)
			logger.Error(ctx, "tg", "tg.panic",
				slog.String("err", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			if c.Callback() != nil {
				if ackErr := tghelpers.Acknowledge(c, PanicNotice); ackErr != nil {
					logger.Warn(ctx, "tg", "tg.panic.ack", slog.String("err", ackErr.Error()))
				}
			}
			err = nil
		}()
		return next(c)
	}
}
