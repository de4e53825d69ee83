package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	_, err := Options{}.ResolveConfigPath()
	assert.Error(t, err)

	p, err := Options{DefaultConfigPath: "config.yaml"}.ResolveConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)

	t.Setenv("CONFIG_PATH", "/etc/bot.yaml")
	p, _ = Options{DefaultConfigPath: "config.yaml"}.ResolveConfigPath()
	assert.Equal(t, "/etc/bot.yaml", p)

	p, _ = Options{ConfigPath: "cli.yaml"}.ResolveConfigPath()
	assert.Equal(t, "cli.yaml", p)
}

func TestRunGroupCancelsTasksWhenBotStops(t *testing.T) {
	taskDone := make(chan struct{})
	err := runGroup(context.Background(),
		func(context.Context) error { return nil },
		[]Task{{Name: "http", Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(taskDone)
			return nil
		}}},
	)
	require.NoError(t, err)
	select {
	case <-taskDone:
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled")
	}
}

func TestRunGroupTaskError(t *testing.T) {
	err := runGroup(context.Background(),
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		[]Task{{Name: "http", Run: func(context.Context) error { return errors.New("address in use") }}},
	)
	assert.EqualError(t, err, "http: address in use")
}

func TestRunGroupParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runGroup(ctx, func(ctx context.Context) error { return ctx.Err() }, nil)
	assert.NoError(t, err)
}
