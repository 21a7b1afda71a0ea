// Package router binds registry entries to telebot endpoints and writes
// one summary line per handled update.
package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/metrics"
	tghelpers "github.com/m3rciful/royaldns/core/telegram/helpers"
	"github.com/m3rciful/royaldns/core/telegram/middleware"
	"github.com/m3rciful/royaldns/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// summarize runs fn under handler name and logs its outcome with timing and reply counters.
func summarize(c tele.Context, name string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	err := fn(c)
	took := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	replies := middleware.RepliesFrom(c)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("handler", name),
		slog.String("outcome", outcome),
		slog.Int("messages", replies.Sent()),
		slog.Int("edits", replies.Edited()),
		slog.Duration("duration", took),
	}
	if c.Callback() != nil {
		attrs = append(attrs, slog.Bool("answered", replies.Answered()))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
			slog.String("error_kind", netutil.Classify(err)),
		)
	}
	attrs = append(attrs, extras...)

	metrics.ObserveHandler(name, outcome, took)
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "handler.handled", attrs...)
	return err
}

// handlerName lowercases and strips a command name for use as a metric label.
func handlerName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
