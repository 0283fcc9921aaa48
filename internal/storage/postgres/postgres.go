// Package postgres persists player loadouts, tallies and battle logs in
// PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/brawl/internal/config"
)

// ApplicationName tags every connection the duel server opens, so the
// outcome store's sessions are identifiable in pg_stat_activity.
const ApplicationName = "brawl-duelserver"

// schemaTables are the tables the repositories read and write.
var schemaTables = []string{"players", "player_brawlers", "tallies", "battle_logs"}

// ErrSchemaMissing is returned by CheckSchema when a repository table has
// not been migrated.
var ErrSchemaMissing = errors.New("postgres: schema not migrated")

// Pool is the connection pool shared by the player and outcome repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and verifies it with a
// ping.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool for %s: %w", cfg.Name, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s: %w", cfg.Name, err)
	}
	return &Pool{pool: pool}, nil
}

// CheckSchema reports ErrSchemaMissing, naming the first absent table, when
// the migrations have not been applied.
func (p *Pool) CheckSchema(ctx context.Context) error {
	for _, table := range schemaTables {
		var present bool
		if err := p.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&present); err != nil {
			return fmt.Errorf("looking up table %s: %w", table, err)
		}
		if !present {
			return fmt.Errorf("%w: table %s", ErrSchemaMissing, table)
		}
	}
	return nil
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
