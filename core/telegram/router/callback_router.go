package router

import (
	"log/slog"

	tg "github.com/m3rciful/royaldns/core/telegram"
	"github.com/m3rciful/royaldns/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute sends every callback query to the registry's callback
// handler, or to its not-found fallback when none is set. The handler
// answers the query itself so it can attach a notice.
func CallbackRoute(reg *tg.Registry) tg.Route {
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler: func(c tele.Context) error {
			cb := c.Callback()
			if cb == nil {
				return nil
			}
			key, _ := callbacks.ParseCallbackData(cb)
			extras := []slog.Attr{slog.String("cb_key", key)}

			h := reg.CallbackHandler()
			if h == nil {
				h = reg.CallbackNotFound()
				extras = append(extras, slog.String("reason", "not_found"))
			}
			return summarize(c, "callback."+handlerName(key), h, extras...)
		},
	}
}
