package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/royaldns/core/config"
	"github.com/m3rciful/royaldns/core/logger"
	tghelpers "github.com/m3rciful/royaldns/core/telegram/helpers"
	"github.com/m3rciful/royaldns/core/telegram/netutil"
	tgsender "github.com/m3rciful/royaldns/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint (command, tele.OnText, tele.OnCallback).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Dispatcher is created from Config.Sender when nil.
	Dispatcher *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// KeepWebhook skips the deleteWebhook call made before long polling.
	KeepWebhook bool
	// Offline builds the bot without calling getMe; used by tests.
	Offline bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// Settings returns telebot settings derived from cfg.
func Settings(cfg *coreconfig.Config) tele.Settings {
	return tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  BuildPoller(cfg),
		Client:  BuildHTTPClient(ClientOptions{LongPollTimeout: longPollTimeout(cfg)}),
		OnError: logHandlerError,
	}
}

// NewBot creates the bot, installs middlewares, routes and the command menu.
func NewBot(opts RunOptions) (*tele.Bot, error) {
	if opts.Config == nil {
		return nil, errors.New("telegram: nil config")
	}
	settings := Settings(opts.Config)
	settings.Offline = opts.Offline

	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %s", netutil.Redact(err))
	}
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
	if !opts.Offline && opts.Registry != nil {
		SetupCommands(bot, opts.Registry)
	}
	return bot, nil
}

// RunTelegram runs the bot until ctx is cancelled or the poller stops.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	started := time.Now()
	bot, err := NewBot(opts)
	if err != nil {
		return err
	}
	cfg := opts.Config
	logMode(ctx, cfg, bot, time.Since(started))

	if !opts.KeepWebhook && !opts.Offline && !isWebhook(cfg) {
		if err := bot.RemoveWebhook(false); err != nil {
			logger.Warn(ctx, "tg", "webhook.delete",
				slog.String("status", "error"),
				slog.String("err", netutil.Redact(err)),
			)
		}
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(SenderOptions(cfg.Sender))
	}
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: opts.Registry}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
	case <-done:
		runErr = errors.New("telegram: poller stopped")
	}

	if opts.OnStop != nil {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := opts.OnStop(stopCtx, rt); err != nil {
			return err
		}
	}
	return runErr
}

// SenderOptions maps sender configuration onto dispatcher options; zero values keep defaults.
func SenderOptions(cfg coreconfig.SenderConfig) tgsender.Options {
	return tgsender.Options{
		QueueSize:    cfg.QueueSize,
		Workers:      cfg.Workers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
	}
}

func isWebhook(cfg *coreconfig.Config) bool {
	return strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeWebhook)
}

func logMode(ctx context.Context, cfg *coreconfig.Config, bot *tele.Bot, took time.Duration) {
	attrs := []slog.Attr{slog.Duration("duration", logger.RoundMS(took))}
	switch p := bot.Poller.(type) {
	case *tele.Webhook:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", cfg.Webhook.URL),
		)
	case *tele.LongPoller:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Duration("timeout", p.Timeout),
		)
	}
	logger.Info(ctx, "tg", "mode", attrs...)
}

// logHandlerError is the telebot OnError hook for errors returned by handlers.
func logHandlerError(err error, c tele.Context) {
	if err == nil {
		return
	}
	ctx := logger.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "tg.handler_error",
		slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
		slog.String("error_kind", netutil.Classify(err)),
	)
}
