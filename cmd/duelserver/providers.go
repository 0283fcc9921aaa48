package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/content"
	"github.com/cory-johannsen/brawl/internal/config"
	"github.com/cory-johannsen/brawl/internal/frontend/telnet"
	"github.com/cory-johannsen/brawl/internal/game/ai"
	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/game/session"
	"github.com/cory-johannsen/brawl/internal/health"
	"github.com/cory-johannsen/brawl/internal/observability"
	"github.com/cory-johannsen/brawl/internal/scripting"
	"github.com/cory-johannsen/brawl/internal/server"
	"github.com/cory-johannsen/brawl/internal/storage"
	"github.com/cory-johannsen/brawl/internal/storage/postgres"
	"github.com/cory-johannsen/brawl/internal/storage/sqlite"
)

// App is the assembled duel server.
type App struct {
	Lifecycle *server.Lifecycle
	Acceptor  *telnet.Acceptor
	Health    *health.Server
	Lobby     *session.Lobby
	logger    *zap.Logger
}

// NewApp registers the health endpoint and the telnet acceptor, in that
// start order.
func NewApp(acceptor *telnet.Acceptor, healthSrv *health.Server, lobby *session.Lobby, logger *zap.Logger) *App {
	lc := server.NewLifecycle(observability.Component(logger, "lifecycle"))
	lc.Add("health", healthSrv)
	lc.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})
	return &App{
		Lifecycle: lc,
		Acceptor:  acceptor,
		Health:    healthSrv,
		Lobby:     lobby,
		logger:    logger,
	}
}

// Run binds both listeners, reports SERVING and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.Health.Listen(); err != nil {
		return err
	}
	if err := a.Acceptor.Listen(); err != nil {
		a.Health.Stop()
		return err
	}
	a.Health.SetServing(true)
	a.logger.Info("duel server ready",
		zap.String("telnet_addr", a.Acceptor.Addr()),
		zap.String("health_addr", a.Health.Addr()),
	)
	return a.Lifecycle.Run(ctx)
}

// ProvideStore opens the configured outcome store. The postgres driver
// applies pending migrations first.
func ProvideStore(ctx context.Context, cfg config.StorageConfig, db config.DatabaseConfig, logger *zap.Logger) (storage.Store, func(), error) {
	start := time.Now()
	var (
		store storage.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		if err := postgres.MigrateUp(db.DSN()); err != nil {
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}
		pool, perr := postgres.NewPool(ctx, db)
		if perr != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", perr)
		}
		if perr := pool.CheckSchema(ctx); perr != nil {
			pool.Close()
			return nil, nil, perr
		}
		store = postgres.NewStore(pool)
	case config.DriverSQLite:
		store, err = sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	logger.Info("outcome store ready",
		zap.String("driver", cfg.Driver),
		zap.Duration("elapsed", time.Since(start)),
	)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideRegistry loads the roster from cfg.RosterDir, or the embedded
// roster when it is empty.
func ProvideRegistry(cfg config.MatchConfig) (*brawler.Registry, error) {
	if cfg.RosterDir == "" {
		return brawler.Default()
	}
	return brawler.LoadDirectory(cfg.RosterDir)
}

// ProvideRoller returns the process-wide crypto-backed roller.
func ProvideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewCryptoSource(), observability.Component(logger, "dice"))
}

// ProvideScripts loads cfg.Policy from cfg.PolicyDir, or from the embedded
// policies when PolicyDir is empty. It returns a nil manager when no policy
// is configured.
func ProvideScripts(cfg config.MatchConfig, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	if cfg.Policy == "" {
		return nil, func() {}, nil
	}
	mgr := scripting.NewManager(roller, observability.Component(logger, "scripting"))
	var err error
	if cfg.PolicyDir == "" {
		err = mgr.LoadPolicyFS(cfg.Policy, content.Policies, "policies", cfg.InstructionLimit)
	} else {
		err = mgr.LoadPolicy(cfg.Policy, cfg.PolicyDir, cfg.InstructionLimit)
	}
	if err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("loading house policy %q: %w", cfg.Policy, err)
	}
	return mgr, mgr.Close, nil
}

// ProvideHouseChooser returns the scripted house when a policy is loaded and
// the uniform random house otherwise.
func ProvideHouseChooser(cfg config.MatchConfig, scripts *scripting.Manager, roller *dice.Roller, logger *zap.Logger) combat.Chooser {
	random := ai.NewRandomChooser(roller)
	if scripts == nil {
		return random
	}
	return ai.NewScriptedChooser(scripts, cfg.Policy, random, observability.Component(logger, "house"))
}
