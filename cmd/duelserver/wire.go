//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/config"
	"github.com/cory-johannsen/brawl/internal/frontend/telnet"
	"github.com/cory-johannsen/brawl/internal/game/session"
	"github.com/cory-johannsen/brawl/internal/gameserver"
	"github.com/cory-johannsen/brawl/internal/health"
)

// InitializeApp wires the duel server from its configuration.
func InitializeApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		wire.FieldsOf(new(*config.Config), "Storage", "Database", "Telnet", "Match", "Health"),
		ProvideStore,
		ProvideRegistry,
		ProvideRoller,
		ProvideScripts,
		ProvideHouseChooser,
		session.NewLobby,
		gameserver.NewDuelHandler,
		wire.Bind(new(telnet.SessionHandler), new(*gameserver.DuelHandler)),
		telnet.NewAcceptor,
		health.NewServer,
		NewApp,
	)
	return nil, nil, nil
}
