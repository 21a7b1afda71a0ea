package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/royaldns/core/config"
	coredatabase "github.com/m3rciful/royaldns/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRun_DatabaseDisabled(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, errors.New("unexpected")
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.False(t, connected)
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("boom") },
	})
	assert.ErrorContains(t, err, "logger init failed")

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return nil, errors.New("refused")
		},
	})
	assert.ErrorContains(t, err, "database initialization failed")
}

func TestStartServices(t *testing.T) {
	var order []string
	ok := func(name string) Service {
		return ServiceFunc(func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	err := StartServices(context.Background(),
		Named{Name: "routing", Service: ok("routing")},
		Named{Name: "skip"},
		Named{Name: "http", Service: ServiceFunc(func(context.Context) error { return errors.New("port in use") })},
		Named{Name: "never", Service: ok("never")},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start http")
	assert.Equal(t, []string{"routing"}, order)
}
