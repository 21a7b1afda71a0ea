// Package app assembles the Royal DNS bot from its parts.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/royaldns/core/bootstrap"
	"github.com/m3rciful/royaldns/core/httpserver"
	"github.com/m3rciful/royaldns/core/logger"
	coretelegram "github.com/m3rciful/royaldns/core/telegram"
	"github.com/m3rciful/royaldns/core/telegram/commands"
	"github.com/m3rciful/royaldns/core/telegram/router"
	"github.com/m3rciful/royaldns/dns/bot"
	"github.com/m3rciful/royaldns/dns/menu"
	"github.com/m3rciful/royaldns/dns/routing"
	"github.com/m3rciful/royaldns/dns/visits"
)

// App holds the wired bot.
type App struct {
	cfg     *Config
	db      *sqlx.DB
	routes  *routing.Store
	visits  *visits.Store
	handler *bot.Handler
}

// Bootstrap initializes logging and storage, builds the menu and loads the routing table.
// Any failure here aborts startup.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}
	a, err := build(cfg, res.DB)
	if err != nil {
		if res.DB != nil {
			_ = res.DB.Close()
		}
		return nil, err
	}
	return a, nil
}

func build(cfg *Config, db *sqlx.DB) (*App, error) {
	nav, err := menu.Default()
	if err != nil {
		return nil, fmt.Errorf("app: menu: %w", err)
	}
	logger.Menu.Info("menu ready",
		slog.String("event", "menu.ready"),
		slog.Int("nodes", len(nav.Graph().Keys())),
	)

	routes, err := routing.NewStore(cfg.Routing)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{cfg: cfg, db: db, routes: routes}
	var rec visits.Recorder = visits.Nop{}
	if db != nil {
		a.visits = visits.NewStore(db)
		rec = a.visits
	}
	a.handler = bot.New(nav, routes, rec)
	return a, nil
}

// Registry registers /start and the menu callback handler.
func (a *App) Registry() (*coretelegram.Registry, error) {
	reg := coretelegram.NewRegistry()
	err := reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handler.Start,
		Description: "Open the DNS menu",
		Aliases:     []string{"menu"},
	})
	if err != nil {
		return nil, err
	}
	reg.SetCallbackHandler(a.handler.Callback)
	reg.SetTextFallback(a.handler.Text)
	return reg, nil
}

// TelegramRunOptions builds the runtime options for the bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: %w", err)
	}
	routes := append(router.CommandRoutes(reg), router.CallbackRoute(reg), router.TextRoute(reg))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			return bootstrap.StartServices(ctx, a.services()...)
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.Close()
		},
	}, nil
}

func (a *App) services() []bootstrap.Named {
	services := []bootstrap.Named{{
		Name: "routing.watch",
		Service: bootstrap.ServiceFunc(func(ctx context.Context) error {
			go a.routes.Watch(ctx)
			return nil
		}),
	}}
	if a.cfg.HTTP.Listen != "" {
		checks := map[string]httpserver.Check{}
		if a.visits != nil {
			checks["db"] = a.visits.Ping
		}
		services = append(services, bootstrap.Named{
			Name:    "http",
			Service: httpserver.New(a.cfg.HTTP.Listen, checks),
		})
	}
	return services
}

// Close releases storage.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
