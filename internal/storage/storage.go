// Package storage defines the durable player records shared by the
// PostgreSQL and SQLite outcome stores.
package storage

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
)

// Tally is a player's win/loss record.
type Tally struct {
	Identity string
	Wins     int
	Losses   int
}

// Store is the durable backend behind the duel front door. It serves the
// engine's Reporter and StatAccessor ports and the profile bootstrap the
// front door needs before a player's first match.
type Store interface {
	combat.Reporter
	combat.StatAccessor

	// EnsureProfile creates identity's profile with def as its loadout when
	// no profile exists. An existing profile is left untouched.
	EnsureProfile(ctx context.Context, identity string, def matchmaking.Loadout) error
	// SetLoadout selects brawler, level and mode for identity, creating the
	// profile if needed.
	SetLoadout(ctx context.Context, identity string, l matchmaking.Loadout) error
	// Tally returns identity's record; unknown identities have a zero record.
	Tally(ctx context.Context, identity string) (Tally, error)
	// BattleLogs returns up to limit entries for identity, newest first.
	BattleLogs(ctx context.Context, identity string, limit int) ([]combat.BattleLogEntry, error)
	Close() error
}

// StatQuery is a parsed StatAccessor request.
type StatQuery struct {
	Field     string
	BrawlerID string
}

// ParseStatQuery validates a StatAccessor field and subfield combination.
//
// Postcondition: on success Field is a known field and BrawlerID is set
// exactly when Field is combat.FieldBrawlers.
func ParseStatQuery(field string, subfield ...string) (StatQuery, error) {
	switch field {
	case combat.FieldSelectedBrawler, combat.FieldSelectedGameMode:
		if len(subfield) != 0 {
			return StatQuery{}, fmt.Errorf("%w: %s takes no subfield", combat.ErrStatNotFound, field)
		}
		return StatQuery{Field: field}, nil
	case combat.FieldBrawlers:
		if len(subfield) != 1 || subfield[0] == "" {
			return StatQuery{}, fmt.Errorf("%w: %s requires a brawler id", combat.ErrStatNotFound, field)
		}
		return StatQuery{Field: field, BrawlerID: subfield[0]}, nil
	default:
		return StatQuery{}, fmt.Errorf("%w: unknown field %q", combat.ErrStatNotFound, field)
	}
}

// ValidateLoadout rejects loadouts no store should persist.
func ValidateLoadout(l matchmaking.Loadout) error {
	if l.BrawlerID == "" {
		return fmt.Errorf("loadout: brawler id is required")
	}
	if !brawler.ValidLevel(l.Level) {
		return fmt.Errorf("%w: %d", combat.ErrInvalidLevel, l.Level)
	}
	if _, err := combat.ModeByTag(l.Mode); err != nil {
		return fmt.Errorf("loadout: %w", err)
	}
	return nil
}

// Tracked reports whether p's outcomes are persisted. House participants
// never accumulate tallies or battle logs.
func Tracked(p *combat.Participant) bool {
	return p != nil && !p.IsHouse()
}
