package matchmaking_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
	"github.com/cory-johannsen/brawl/internal/testutil"
)

func roster(t testing.TB) *brawler.Registry {
	t.Helper()
	reg, err := brawler.Default()
	require.NoError(t, err)
	return reg
}

func TestPickHouseOpponent_LevelOffsets(t *testing.T) {
	reg := roster(t)
	tests := []struct {
		own, offsetDraw, want int
	}{
		{5, 0, 4},
		{5, 1, 5},
		{5, 2, 6},
		{1, 0, 1},
		{10, 1, 10},
	}
	for _, tc := range tests {
		r := dice.NewLoggedRoller(testutil.NewSequenceSource(0, tc.offsetDraw), nil)
		opp, err := matchmaking.PickHouseOpponent(reg, r, tc.own)
		require.NoError(t, err)
		assert.Equal(t, tc.want, opp.Level, "own=%d draw=%d", tc.own, tc.offsetDraw)
		assert.Zero(t, opp.StarPower)
		assert.Equal(t, reg.IDs()[0], opp.Brawler.ID)
	}
}

func TestPickHouseOpponent_OverflowUnlocksStarPower(t *testing.T) {
	reg := roster(t)
	r := dice.NewLoggedRoller(testutil.NewSequenceSource(0, 2, 1), nil)
	opp, err := matchmaking.PickHouseOpponent(reg, r, 10)
	require.NoError(t, err)
	assert.Equal(t, brawler.MaxLevel, opp.Level)
	assert.Equal(t, 2, opp.StarPower)
	assert.Equal(t, opp.Brawler.StarPowers[1].Name, opp.StarPowerName())
}

func TestProperty_HouseLevelWithinOneAndClamped(t *testing.T) {
	reg := roster(t)
	rapid.Check(t, func(rt *rapid.T) {
		own := rapid.IntRange(1, 10).Draw(rt, "own")
		seed := rapid.Uint64().Draw(rt, "seed")
		r := dice.NewLoggedRoller(dice.NewSeededSource(seed), nil)
		opp, err := matchmaking.PickHouseOpponent(reg, r, own)
		if err != nil {
			rt.Fatal(err)
		}
		if opp.Level < 1 || opp.Level > brawler.MaxLevel {
			rt.Fatalf("level %d out of range", opp.Level)
		}
		if d := opp.Level - own; d < -1 || d > 1 {
			rt.Fatalf("level %d too far from %d", opp.Level, own)
		}
		if opp.StarPower != 0 && own != brawler.MaxLevel {
			rt.Fatalf("star power unlocked below the cap")
		}
	})
}

func TestPickHouseOpponent_UniformRoster(t *testing.T) {
	reg := roster(t)
	r := dice.NewLoggedRoller(dice.NewSeededSource(11), nil)
	counts := map[string]int{}
	const n = 36000
	for i := 0; i < n; i++ {
		opp, err := matchmaking.PickHouseOpponent(reg, r, 5)
		require.NoError(t, err)
		counts[opp.Brawler.ID]++
	}
	require.Len(t, counts, reg.Len())
	want := float64(n) / float64(reg.Len())
	for id, c := range counts {
		assert.InDelta(t, want, float64(c), want*0.15, id)
	}
}

func TestPickHouseOpponent_EmptyRoster(t *testing.T) {
	_, err := matchmaking.PickHouseOpponent(brawler.NewRegistry(), dice.NewLoggedRoller(dice.NewSeededSource(1), nil), 3)
	assert.Error(t, err)
}

func TestHouseOpponent_Entrant(t *testing.T) {
	reg := roster(t)
	def, err := reg.Get("shelly")
	require.NoError(t, err)
	opp := matchmaking.HouseOpponent{Brawler: def, Level: 4}
	e := opp.Entrant(combat.ChooserFunc(func(context.Context, combat.ChoiceRequest) combat.Reply { return combat.Choice(0) }))
	assert.Equal(t, matchmaking.HouseID, e.ID)
	assert.True(t, e.IsHouse())
	assert.Equal(t, "shelly", e.BrawlerID)
	assert.Equal(t, 4, e.Level)
	assert.Empty(t, opp.StarPowerName())
}

type mapStats map[string]string

func (m mapStats) Get(_ context.Context, identity, field string, sub ...string) (string, error) {
	key := identity + "/" + field
	for _, s := range sub {
		key += "/" + s
	}
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", combat.ErrStatNotFound, key)
	}
	return v, nil
}

func TestReadLoadout(t *testing.T) {
	stats := mapStats{
		"u1/selected_brawler":  "colt",
		"u1/brawlers/colt":     "7",
		"u1/selected_gamemode": "brawlball",
		"u2/selected_brawler":  "colt",
		"u2/brawlers/colt":     "11",
		"u3/selected_brawler":  "colt",
		"u3/brawlers/colt":     "2",
		"u3/selected_gamemode": "heist",
	}
	lo, err := matchmaking.ReadLoadout(context.Background(), stats, "u1")
	require.NoError(t, err)
	assert.Equal(t, matchmaking.Loadout{BrawlerID: "colt", Level: 7, Mode: combat.ModeBrawlBall}, lo)

	_, err = matchmaking.ReadLoadout(context.Background(), stats, "u2")
	assert.ErrorIs(t, err, combat.ErrInvalidLevel)

	_, err = matchmaking.ReadLoadout(context.Background(), stats, "u3")
	assert.ErrorIs(t, err, combat.ErrUnknownMode)

	_, err = matchmaking.ReadLoadout(context.Background(), stats, "nobody")
	assert.ErrorIs(t, err, combat.ErrStatNotFound)
}
