package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/royaldns/core/logger"
)

// Service is a background component that runs alongside the bot.
// Start must return promptly; the service stops when ctx is done.
type Service interface {
	Start(ctx context.Context) error
}

// ServiceFunc adapts a bare function to the Service interface.
type ServiceFunc func(ctx context.Context) error

// Start executes the underlying function.
func (f ServiceFunc) Start(ctx context.Context) error {
	return f(ctx)
}

// Named pairs a service with the name used in logs.
type Named struct {
	Name    string
	Service Service
}

// StartServices starts services in order and stops at the first failure.
// Services already started keep running until ctx is done.
func StartServices(ctx context.Context, services ...Named) error {
	for _, s := range services {
		if s.Service == nil {
			continue
		}
		if err := s.Service.Start(ctx); err != nil {
			return fmt.Errorf("bootstrap: start %s: %w", s.Name, err)
		}
		logger.L.Debug("service started",
			slog.String("event", "service.start"),
			slog.String("service", s.Name),
		)
	}
	return nil
}
