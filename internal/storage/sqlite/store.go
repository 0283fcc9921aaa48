// Package sqlite provides the standalone outcome store: player loadouts,
// tallies and battle logs in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
	"github.com/cory-johannsen/brawl/internal/storage"
	"github.com/cory-johannsen/brawl/internal/storage/sqlite/migrations"
)

// Store persists duel outcomes in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// Open opens the SQLite database at path and applies embedded migrations.
// The path ":memory:" opens a private in-memory database.
//
// Postcondition: Returns a migrated Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: SQLite serialises writers and each in-memory
	// connection would otherwise see its own database.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get implements combat.StatAccessor.
func (s *Store) Get(ctx context.Context, identity, field string, subfield ...string) (string, error) {
	q, err := storage.ParseStatQuery(field, subfield...)
	if err != nil {
		return "", err
	}

	var value string
	switch q.Field {
	case combat.FieldSelectedBrawler:
		err = s.sqlDB.QueryRowContext(ctx,
			`SELECT selected_brawler FROM players WHERE identity = ?`, identity,
		).Scan(&value)
	case combat.FieldSelectedGameMode:
		err = s.sqlDB.QueryRowContext(ctx,
			`SELECT selected_gamemode FROM players WHERE identity = ?`, identity,
		).Scan(&value)
	case combat.FieldBrawlers:
		var level int
		err = s.sqlDB.QueryRowContext(ctx,
			`SELECT level FROM player_brawlers WHERE identity = ? AND brawler_id = ?`,
			identity, q.BrawlerID,
		).Scan(&level)
		value = strconv.Itoa(level)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s %s%v", combat.ErrStatNotFound, identity, field, subfield)
		}
		return "", fmt.Errorf("query %s for %s: %w", field, identity, err)
	}
	return value, nil
}

// EnsureProfile creates identity's profile with def when it has none.
func (s *Store) EnsureProfile(ctx context.Context, identity string, def matchmaking.Loadout) error {
	if err := storage.ValidateLoadout(def); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO players (identity, selected_brawler, selected_gamemode, created_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (identity) DO NOTHING`,
			identity, def.BrawlerID, string(def.Mode), nowMillis(),
		)
		if err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO player_brawlers (identity, brawler_id, level) VALUES (?, ?, ?)`,
			identity, def.BrawlerID, def.Level,
		); err != nil {
			return fmt.Errorf("insert player brawler: %w", err)
		}
		return nil
	})
}

// SetLoadout selects l for identity, creating the profile if needed.
func (s *Store) SetLoadout(ctx context.Context, identity string, l matchmaking.Loadout) error {
	if err := storage.ValidateLoadout(l); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO players (identity, selected_brawler, selected_gamemode, created_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (identity) DO UPDATE
			 SET selected_brawler = excluded.selected_brawler,
			     selected_gamemode = excluded.selected_gamemode`,
			identity, l.BrawlerID, string(l.Mode), nowMillis(),
		); err != nil {
			return fmt.Errorf("upsert player: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO player_brawlers (identity, brawler_id, level) VALUES (?, ?, ?)
			 ON CONFLICT (identity, brawler_id) DO UPDATE SET level = excluded.level`,
			identity, l.BrawlerID, l.Level,
		); err != nil {
			return fmt.Errorf("upsert player brawler: %w", err)
		}
		return nil
	})
}

// RecordResult implements combat.Reporter. Draws and house participants
// leave the tallies unchanged.
func (s *Store) RecordResult(ctx context.Context, winner, loser *combat.Participant, mode combat.ModeTag) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := nowMillis()
		if storage.Tracked(winner) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tallies (identity, wins, updated_at) VALUES (?, 1, ?)
				 ON CONFLICT (identity) DO UPDATE
				 SET wins = wins + 1, updated_at = excluded.updated_at`,
				winner.ID, now,
			); err != nil {
				return fmt.Errorf("record %s win for %s: %w", mode, winner.ID, err)
			}
		}
		if storage.Tracked(loser) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tallies (identity, losses, updated_at) VALUES (?, 1, ?)
				 ON CONFLICT (identity) DO UPDATE
				 SET losses = losses + 1, updated_at = excluded.updated_at`,
				loser.ID, now,
			); err != nil {
				return fmt.Errorf("record %s loss for %s: %w", mode, loser.ID, err)
			}
		}
		return nil
	})
}

// RecordBattleLog implements combat.Reporter. A second entry for the same
// match and participant is ignored.
func (s *Store) RecordBattleLog(ctx context.Context, entry combat.BattleLogEntry) error {
	if !storage.Tracked(&entry.Participant) {
		return nil
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO battle_logs (
		   match_id, identity, participant_name, opponent_id, opponent_name,
		   brawler_id, brawler_name, brawler_level, mode, result, rounds,
		   forfeit_reason, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (match_id, identity) DO NOTHING`,
		entry.MatchID, entry.Participant.ID, entry.Participant.Name,
		entry.OpponentID, entry.OpponentName,
		entry.BrawlerID, entry.BrawlerName, entry.BrawlerLevel,
		string(entry.Mode), string(entry.Result), entry.Rounds,
		entry.ForfeitReason, nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("insert battle log for %s: %w", entry.Participant.ID, err)
	}
	return nil
}

// Tally returns identity's record; unknown identities have a zero record.
func (s *Store) Tally(ctx context.Context, identity string) (storage.Tally, error) {
	t := storage.Tally{Identity: identity}
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT wins, losses FROM tallies WHERE identity = ?`, identity,
	).Scan(&t.Wins, &t.Losses)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return storage.Tally{}, fmt.Errorf("query tally for %s: %w", identity, err)
	}
	return t, nil
}

// BattleLogs returns up to limit entries for identity, newest first.
func (s *Store) BattleLogs(ctx context.Context, identity string, limit int) ([]combat.BattleLogEntry, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT match_id, identity, participant_name, opponent_id, opponent_name,
		        brawler_id, brawler_name, brawler_level, mode, result, rounds, forfeit_reason
		 FROM battle_logs WHERE identity = ?
		 ORDER BY id DESC LIMIT ?`,
		identity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query battle logs for %s: %w", identity, err)
	}
	defer rows.Close()

	var out []combat.BattleLogEntry
	for rows.Next() {
		var (
			e            combat.BattleLogEntry
			mode, result string
		)
		if err := rows.Scan(
			&e.MatchID, &e.Participant.ID, &e.Participant.Name, &e.OpponentID, &e.OpponentName,
			&e.BrawlerID, &e.BrawlerName, &e.BrawlerLevel, &mode, &result, &e.Rounds, &e.ForfeitReason,
		); err != nil {
			return nil, fmt.Errorf("scan battle log: %w", err)
		}
		e.Participant.Kind = combat.KindPlayer
		e.Mode = combat.ModeTag(mode)
		e.Result = combat.ResultTag(result)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate battle logs: %w", err)
	}
	return out, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
