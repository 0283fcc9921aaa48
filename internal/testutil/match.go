package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
)

// MustDefaultRoster returns the embedded brawler roster or fails t.
func MustDefaultRoster(t testing.TB) *brawler.Registry {
	t.Helper()
	reg, err := brawler.Default()
	require.NoError(t, err)
	return reg
}

// ResultRecord is one RecordResult call.
type ResultRecord struct {
	Winner *combat.Participant
	Loser  *combat.Participant
	Mode   combat.ModeTag
}

// RecordingReporter is a combat.Reporter that keeps every call in memory.
type RecordingReporter struct {
	mu      sync.Mutex
	results []ResultRecord
	logs    []combat.BattleLogEntry
}

// RecordResult implements combat.Reporter.
func (r *RecordingReporter) RecordResult(_ context.Context, winner, loser *combat.Participant, mode combat.ModeTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, ResultRecord{Winner: winner, Loser: loser, Mode: mode})
	return nil
}

// RecordBattleLog implements combat.Reporter.
func (r *RecordingReporter) RecordBattleLog(_ context.Context, entry combat.BattleLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, entry)
	return nil
}

// ResultCount returns the number of RecordResult calls.
func (r *RecordingReporter) ResultCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// Results returns a copy of the recorded results.
func (r *RecordingReporter) Results() []ResultRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ResultRecord(nil), r.results...)
}

// Logs returns a copy of the recorded battle logs.
func (r *RecordingReporter) Logs() []combat.BattleLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]combat.BattleLogEntry(nil), r.logs...)
}
