package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/brawl/internal/config"
	"github.com/cory-johannsen/brawl/internal/game/ai"
	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/testutil"
)

func testConfig() config.Config {
	return config.Config{
		Storage: config.StorageConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Telnet:  config.TelnetConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Minute, WriteTimeout: time.Second},
		Match:   config.MatchConfig{ChoiceTimeout: time.Second, Policy: "house", InstructionLimit: 100000},
		Health:  config.HealthConfig{Host: "127.0.0.1", Port: 0},
	}
}

func TestProvideStore_SQLite(t *testing.T) {
	store, cleanup, err := ProvideStore(context.Background(), config.StorageConfig{Driver: config.DriverSQLite, Path: ":memory:"}, config.DatabaseConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()

	tally, err := store.Tally(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, tally.Wins)
}

func TestProvideStore_UnknownDriver(t *testing.T) {
	_, _, err := ProvideStore(context.Background(), config.StorageConfig{Driver: "mysql"}, config.DatabaseConfig{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestProvideRegistry(t *testing.T) {
	reg, err := ProvideRegistry(config.MatchConfig{})
	require.NoError(t, err)
	assert.Equal(t, testutil.MustDefaultRoster(t).IDs(), reg.IDs())

	_, err = ProvideRegistry(config.MatchConfig{RosterDir: t.TempDir()})
	assert.Error(t, err, "empty roster dir")
}

func TestProvideHouseChooser(t *testing.T) {
	logger := zaptest.NewLogger(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(3), logger)

	scripts, cleanup, err := ProvideScripts(config.MatchConfig{}, roller, logger)
	require.NoError(t, err)
	cleanup()
	assert.Nil(t, scripts)
	assert.IsType(t, &ai.RandomChooser{}, ProvideHouseChooser(config.MatchConfig{}, scripts, roller, logger))

	cfg := config.MatchConfig{Policy: "house", InstructionLimit: 100000}
	scripts, cleanup, err = ProvideScripts(cfg, roller, logger)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, []string{"house"}, scripts.Policies())
	assert.IsType(t, &ai.ScriptedChooser{}, ProvideHouseChooser(cfg, scripts, roller, logger))
}

func TestProvideScripts_MissingDir(t *testing.T) {
	logger := zaptest.NewLogger(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(3), logger)
	_, _, err := ProvideScripts(config.MatchConfig{Policy: "house", PolicyDir: "/nonexistent"}, roller, logger)
	assert.Error(t, err)
}

func TestInitializeApp_ServesTelnetAndHealth(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)
	app, cleanup, err := InitializeApp(context.Background(), &cfg, logger)
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return app.Acceptor.IsRunning() }, 2*time.Second, 10*time.Millisecond)
	client := testutil.NewTelnetClient(t, app.Acceptor.Addr())
	client.ReadUntil("Name: ", 2*time.Second)
	client.Send("alice")
	client.ReadUntil("What next?", 2*time.Second)
	require.Eventually(t, func() bool { return app.Lobby.PlayerCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, 0, app.Lobby.PlayerCount())
}
