package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
	"github.com/cory-johannsen/brawl/internal/storage"
)

// PlayerRepository stores player loadouts and serves them through the
// combat.StatAccessor port.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Get implements combat.StatAccessor.
//
// Postcondition: Returns combat.ErrStatNotFound (wrapped) for an unknown
// identity, field or brawler.
func (r *PlayerRepository) Get(ctx context.Context, identity, field string, subfield ...string) (string, error) {
	q, err := storage.ParseStatQuery(field, subfield...)
	if err != nil {
		return "", err
	}

	var value string
	switch q.Field {
	case combat.FieldSelectedBrawler:
		err = r.db.QueryRow(ctx,
			`SELECT selected_brawler FROM players WHERE identity = $1`,
			identity,
		).Scan(&value)
	case combat.FieldSelectedGameMode:
		err = r.db.QueryRow(ctx,
			`SELECT selected_gamemode FROM players WHERE identity = $1`,
			identity,
		).Scan(&value)
	case combat.FieldBrawlers:
		var level int16
		err = r.db.QueryRow(ctx,
			`SELECT level FROM player_brawlers WHERE identity = $1 AND brawler_id = $2`,
			identity, q.BrawlerID,
		).Scan(&level)
		value = strconv.Itoa(int(level))
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s %s%v", combat.ErrStatNotFound, identity, field, subfield)
		}
		return "", fmt.Errorf("querying %s for %s: %w", field, identity, err)
	}
	return value, nil
}

// EnsureProfile creates identity's profile with def when it has none.
//
// Precondition: def must pass storage.ValidateLoadout.
// Postcondition: identity has a profile; an existing one is unchanged.
func (r *PlayerRepository) EnsureProfile(ctx context.Context, identity string, def matchmaking.Loadout) error {
	if err := storage.ValidateLoadout(def); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO players (identity, selected_brawler, selected_gamemode)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (identity) DO NOTHING`,
			identity, def.BrawlerID, string(def.Mode),
		)
		if err != nil {
			return fmt.Errorf("inserting player: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO player_brawlers (identity, brawler_id, level)
			 VALUES ($1, $2, $3)`,
			identity, def.BrawlerID, def.Level,
		); err != nil {
			return fmt.Errorf("inserting player brawler: %w", err)
		}
		return nil
	})
}

// SetLoadout selects l for identity, creating the profile if needed.
//
// Precondition: l must pass storage.ValidateLoadout.
// Postcondition: Get returns l's brawler, level and mode for identity.
func (r *PlayerRepository) SetLoadout(ctx context.Context, identity string, l matchmaking.Loadout) error {
	if err := storage.ValidateLoadout(l); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO players (identity, selected_brawler, selected_gamemode)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (identity) DO UPDATE
			 SET selected_brawler = EXCLUDED.selected_brawler,
			     selected_gamemode = EXCLUDED.selected_gamemode`,
			identity, l.BrawlerID, string(l.Mode),
		); err != nil {
			return fmt.Errorf("upserting player: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO player_brawlers (identity, brawler_id, level)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (identity, brawler_id) DO UPDATE SET level = EXCLUDED.level`,
			identity, l.BrawlerID, l.Level,
		); err != nil {
			return fmt.Errorf("upserting player brawler: %w", err)
		}
		return nil
	})
}
