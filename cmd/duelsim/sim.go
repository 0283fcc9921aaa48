package main

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
)

// Side identities. Both sides are house participants, so nothing is persisted.
const (
	redID  = "red"
	blueID = "blue"
)

// Tally aggregates the outcomes of simulated matches in one mode.
type Tally struct {
	Mode     combat.ModeTag
	Matches  int
	RedWins  int
	BlueWins int
	Draws    int
	Forfeits int
	Rounds   int
	// Wins counts victories per brawler ID.
	Wins map[string]int
}

// AvgRounds is the mean match length in half-rounds.
func (t Tally) AvgRounds() float64 {
	if t.Matches == 0 {
		return 0
	}
	return float64(t.Rounds) / float64(t.Matches)
}

// countingReporter satisfies combat.Reporter by counting results.
type countingReporter struct {
	mu      sync.Mutex
	results int
}

func (r *countingReporter) RecordResult(context.Context, *combat.Participant, *combat.Participant, combat.ModeTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results++
	return nil
}

func (r *countingReporter) RecordBattleLog(context.Context, combat.BattleLogEntry) error { return nil }

// Simulator plays house-vs-house matches.
type Simulator struct {
	Registry *brawler.Registry
	Roller   *dice.Roller
	// Red and Blue answer each side's moves.
	Red    combat.Chooser
	Blue   combat.Chooser
	Level  int
	Logger *zap.Logger
}

// Run plays n matches of mode. Red gets a random brawler at s.Level; blue is
// matched against it the way a house opponent is.
//
// Precondition: n >= 0 and s.Level is a valid brawler level.
func (s *Simulator) Run(ctx context.Context, mode combat.ModeTag, n int) (Tally, error) {
	t := Tally{Mode: mode, Wins: make(map[string]int)}
	rep := &countingReporter{}
	ids := s.Registry.IDs()
	if len(ids) == 0 {
		return t, fmt.Errorf("duelsim: empty roster")
	}
	for i := 0; i < n; i++ {
		redDef, err := s.Registry.Get(ids[s.Roller.IntRange("red brawler", 0, len(ids)-1)])
		if err != nil {
			return t, err
		}
		blue, err := matchmaking.PickHouseOpponent(s.Registry, s.Roller, s.Level)
		if err != nil {
			return t, err
		}
		m, err := combat.NewMatch(combat.Setup{
			Mode: mode,
			Challenger: combat.Entrant{
				Participant: combat.Participant{ID: redID, Name: "Red " + redDef.Name, Kind: combat.KindHouse},
				BrawlerID:   redDef.ID,
				Level:       s.Level,
				Chooser:     s.Red,
			},
			Opponent: combat.Entrant{
				Participant: combat.Participant{ID: blueID, Name: "Blue " + blue.Brawler.Name, Kind: combat.KindHouse},
				BrawlerID:   blue.Brawler.ID,
				Level:       blue.Level,
				Chooser:     s.Blue,
			},
			Registry: s.Registry,
			Roller:   s.Roller,
			Reporter: rep,
			Logger:   s.Logger,
		})
		if err != nil {
			return t, fmt.Errorf("match %d: %w", i, err)
		}
		res, err := m.Run(ctx)
		if err != nil {
			return t, fmt.Errorf("match %d: %w", i, err)
		}

		t.Matches++
		t.Rounds += res.Rounds
		if res.Reason == combat.EndForfeit {
			t.Forfeits++
		}
		switch {
		case res.Draw():
			t.Draws++
		case res.Winner.ID == redID:
			t.RedWins++
			t.Wins[redDef.ID]++
		default:
			t.BlueWins++
			t.Wins[blue.Brawler.ID]++
		}
	}
	if rep.results != t.Matches {
		return t, fmt.Errorf("duelsim: %d results reported for %d matches", rep.results, t.Matches)
	}
	return t, nil
}
