package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
	"github.com/cory-johannsen/brawl/internal/storage"
)

func TestParseStatQuery(t *testing.T) {
	q, err := storage.ParseStatQuery(combat.FieldSelectedBrawler)
	require.NoError(t, err)
	assert.Equal(t, storage.StatQuery{Field: combat.FieldSelectedBrawler}, q)

	q, err = storage.ParseStatQuery(combat.FieldBrawlers, "colt")
	require.NoError(t, err)
	assert.Equal(t, "colt", q.BrawlerID)

	for _, bad := range [][]string{
		{combat.FieldSelectedGameMode, "extra"},
		{combat.FieldBrawlers},
		{combat.FieldBrawlers, ""},
		{"trophies"},
	} {
		_, err := storage.ParseStatQuery(bad[0], bad[1:]...)
		assert.ErrorIs(t, err, combat.ErrStatNotFound, "query %v", bad)
	}
}

func TestValidateLoadout(t *testing.T) {
	ok := matchmaking.Loadout{BrawlerID: "shelly", Level: 10, Mode: combat.ModeBrawlBall}
	assert.NoError(t, storage.ValidateLoadout(ok))

	noID := ok
	noID.BrawlerID = ""
	assert.Error(t, storage.ValidateLoadout(noID))

	badLevel := ok
	badLevel.Level = 11
	assert.ErrorIs(t, storage.ValidateLoadout(badLevel), combat.ErrInvalidLevel)

	badMode := ok
	badMode.Mode = "heist"
	assert.ErrorIs(t, storage.ValidateLoadout(badMode), combat.ErrUnknownMode)
}

func TestTracked(t *testing.T) {
	assert.False(t, storage.Tracked(nil))
	assert.False(t, storage.Tracked(&combat.Participant{ID: "house", Kind: combat.KindHouse}))
	assert.True(t, storage.Tracked(&combat.Participant{ID: "alice", Kind: combat.KindPlayer}))
}

func TestPropertyValidLevelsAccepted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 10).Draw(rt, "level")
		mode := rapid.SampledFrom(combat.ModeTags()).Draw(rt, "mode")
		if err := storage.ValidateLoadout(matchmaking.Loadout{BrawlerID: "colt", Level: level, Mode: mode}); err != nil {
			rt.Fatalf("level %d mode %s rejected: %v", level, mode, err)
		}
	})
}
