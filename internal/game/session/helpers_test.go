package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
)

var nopChooser = combat.ChooserFunc(func(context.Context, combat.ChoiceRequest) combat.Reply {
	return combat.Choice(0)
})

type nopReporter struct{}

func (nopReporter) RecordResult(context.Context, *combat.Participant, *combat.Participant, combat.ModeTag) error {
	return nil
}

func (nopReporter) RecordBattleLog(context.Context, combat.BattleLogEntry) error { return nil }

func defaultRoster(t *testing.T) *brawler.Registry {
	t.Helper()
	reg, err := brawler.Default()
	require.NoError(t, err)
	return reg
}
