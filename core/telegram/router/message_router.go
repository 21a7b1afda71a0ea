package router

import (
	tg "github.com/m3rciful/royaldns/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextRoute handles plain text: a command alias typed without its slash
// runs that command, anything else goes to the registry's text fallback.
func TextRoute(reg *tg.Registry) tg.Route {
	return tg.Route{
		Endpoint: tele.OnText,
		Handler: func(c tele.Context) error {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok {
				return summarize(c, handlerName(key), cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return summarize(c, "fallback", fb)
			}
			return nil
		},
	}
}
