// Package middleware holds the global telebot middlewares of the bot.
package middleware

import (
	"log/slog"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/royaldns/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Trace attaches the request id and update metadata to the update and
// logs one sampled debug line per received update.
func Trace(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if logger.ShouldSampleDebug() {
			logger.Debug(ctx, "tg", "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	var attrs []slog.Attr
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}
	if cb := c.Callback(); cb != nil {
		key, payload := callbacks.ParseCallbackData(cb)
		attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 64)))
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 128)))
		}
	} else if text := c.Text(); text != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(text, 128)))
	}
	return attrs
}
