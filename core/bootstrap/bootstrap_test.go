package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/coursebot/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.False(t, connected)
	assert.NoError(t, res.Close())
}

func TestRunNilConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}

func TestRunLoggerFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("boom") },
	})
	assert.ErrorContains(t, err, "logger init failed")
}

func TestRunConnectFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:      &coreconfig.Config{},
		UseDatabase: true,
		LoggerInit:  noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			return nil, errors.New("refused")
		},
	})
	assert.ErrorContains(t, err, "database initialization failed")
}
