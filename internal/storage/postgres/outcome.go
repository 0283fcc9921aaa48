package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/storage"
)

// OutcomeRepository persists match outcomes. It implements combat.Reporter.
type OutcomeRepository struct {
	db *pgxpool.Pool
}

// NewOutcomeRepository creates an OutcomeRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewOutcomeRepository(db *pgxpool.Pool) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// RecordResult increments the winner's wins and the loser's losses on every
// call; the engine calls it once per match. Draws and house participants
// leave the tallies unchanged.
func (r *OutcomeRepository) RecordResult(ctx context.Context, winner, loser *combat.Participant, mode combat.ModeTag) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if storage.Tracked(winner) {
			if _, err := tx.Exec(ctx,
				`INSERT INTO tallies (identity, wins) VALUES ($1, 1)
				 ON CONFLICT (identity) DO UPDATE
				 SET wins = tallies.wins + 1, updated_at = NOW()`,
				winner.ID,
			); err != nil {
				return fmt.Errorf("recording %s win for %s: %w", mode, winner.ID, err)
			}
		}
		if storage.Tracked(loser) {
			if _, err := tx.Exec(ctx,
				`INSERT INTO tallies (identity, losses) VALUES ($1, 1)
				 ON CONFLICT (identity) DO UPDATE
				 SET losses = tallies.losses + 1, updated_at = NOW()`,
				loser.ID,
			); err != nil {
				return fmt.Errorf("recording %s loss for %s: %w", mode, loser.ID, err)
			}
		}
		return nil
	})
}

// RecordBattleLog inserts entry. A second entry for the same match and
// participant is ignored.
func (r *OutcomeRepository) RecordBattleLog(ctx context.Context, entry combat.BattleLogEntry) error {
	if !storage.Tracked(&entry.Participant) {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO battle_logs (
		   match_id, identity, participant_name, opponent_id, opponent_name,
		   brawler_id, brawler_name, brawler_level, mode, result, rounds, forfeit_reason
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (match_id, identity) DO NOTHING`,
		entry.MatchID, entry.Participant.ID, entry.Participant.Name,
		entry.OpponentID, entry.OpponentName,
		entry.BrawlerID, entry.BrawlerName, entry.BrawlerLevel,
		string(entry.Mode), string(entry.Result), entry.Rounds, entry.ForfeitReason,
	)
	if err != nil {
		return fmt.Errorf("inserting battle log for %s: %w", entry.Participant.ID, err)
	}
	return nil
}

// Tally returns identity's record; unknown identities have a zero record.
func (r *OutcomeRepository) Tally(ctx context.Context, identity string) (storage.Tally, error) {
	t := storage.Tally{Identity: identity}
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(wins), 0), COALESCE(SUM(losses), 0)
		 FROM tallies WHERE identity = $1`,
		identity,
	).Scan(&t.Wins, &t.Losses)
	if err != nil {
		return storage.Tally{}, fmt.Errorf("querying tally for %s: %w", identity, err)
	}
	return t, nil
}

// BattleLogs returns up to limit entries for identity, newest first.
//
// Precondition: limit > 0.
func (r *OutcomeRepository) BattleLogs(ctx context.Context, identity string, limit int) ([]combat.BattleLogEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT match_id, identity, participant_name, opponent_id, opponent_name,
		        brawler_id, brawler_name, brawler_level, mode, result, rounds, forfeit_reason
		 FROM battle_logs WHERE identity = $1
		 ORDER BY id DESC LIMIT $2`,
		identity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying battle logs for %s: %w", identity, err)
	}
	defer rows.Close()

	var out []combat.BattleLogEntry
	for rows.Next() {
		var (
			e      combat.BattleLogEntry
			level  int16
			mode   string
			result string
		)
		if err := rows.Scan(
			&e.MatchID, &e.Participant.ID, &e.Participant.Name, &e.OpponentID, &e.OpponentName,
			&e.BrawlerID, &e.BrawlerName, &level, &mode, &result, &e.Rounds, &e.ForfeitReason,
		); err != nil {
			return nil, fmt.Errorf("scanning battle log: %w", err)
		}
		e.Participant.Kind = combat.KindPlayer
		e.BrawlerLevel = int(level)
		e.Mode = combat.ModeTag(mode)
		e.Result = combat.ResultTag(result)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle logs: %w", err)
	}
	return out, nil
}
