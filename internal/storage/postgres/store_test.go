package postgres_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
	"github.com/cory-johannsen/brawl/internal/storage/postgres"
	"github.com/cory-johannsen/brawl/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func setupRepos(t *testing.T) (*postgres.PlayerRepository, *postgres.OutcomeRepository) {
	t.Helper()
	pool := testutil.NewPool(t)
	return postgres.NewPlayerRepository(pool), postgres.NewOutcomeRepository(pool)
}

func player(id string) *combat.Participant {
	return &combat.Participant{ID: id, Name: id, Kind: combat.KindPlayer}
}

var shellyGems = matchmaking.Loadout{BrawlerID: "shelly", Level: 3, Mode: combat.ModeGemGrab}

func TestPlayerRepository_EnsureProfileAndGet(t *testing.T) {
	players, _ := setupRepos(t)
	ctx := context.Background()
	id := uniqueName("alice")

	require.NoError(t, players.EnsureProfile(ctx, id, shellyGems))

	got, err := matchmaking.ReadLoadout(ctx, players, id)
	require.NoError(t, err)
	assert.Equal(t, shellyGems, got)
}

func TestPlayerRepository_EnsureProfileKeepsExisting(t *testing.T) {
	players, _ := setupRepos(t)
	ctx := context.Background()
	id := uniqueName("alice")

	require.NoError(t, players.EnsureProfile(ctx, id, shellyGems))
	require.NoError(t, players.EnsureProfile(ctx, id, matchmaking.Loadout{BrawlerID: "colt", Level: 1, Mode: combat.ModeShowdown}))

	brawlerID, err := players.Get(ctx, id, combat.FieldSelectedBrawler)
	require.NoError(t, err)
	assert.Equal(t, "shelly", brawlerID)
}

func TestPlayerRepository_SetLoadout(t *testing.T) {
	players, _ := setupRepos(t)
	ctx := context.Background()
	id := uniqueName("bob")

	require.NoError(t, players.EnsureProfile(ctx, id, shellyGems))
	next := matchmaking.Loadout{BrawlerID: "leon", Level: 9, Mode: combat.ModeBrawlBall}
	require.NoError(t, players.SetLoadout(ctx, id, next))

	got, err := matchmaking.ReadLoadout(ctx, players, id)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	// The previous brawler keeps its level.
	level, err := players.Get(ctx, id, combat.FieldBrawlers, "shelly")
	require.NoError(t, err)
	assert.Equal(t, "3", level)
}

func TestPlayerRepository_SetLoadoutRejectsInvalid(t *testing.T) {
	players, _ := setupRepos(t)
	ctx := context.Background()

	err := players.SetLoadout(ctx, uniqueName("x"), matchmaking.Loadout{BrawlerID: "shelly", Level: 11, Mode: combat.ModeGemGrab})
	assert.ErrorIs(t, err, combat.ErrInvalidLevel)

	err = players.SetLoadout(ctx, uniqueName("x"), matchmaking.Loadout{BrawlerID: "shelly", Level: 1, Mode: "heist"})
	assert.ErrorIs(t, err, combat.ErrUnknownMode)
}

func TestPlayerRepository_GetNotFound(t *testing.T) {
	players, _ := setupRepos(t)
	ctx := context.Background()

	_, err := players.Get(ctx, uniqueName("ghost"), combat.FieldSelectedBrawler)
	assert.ErrorIs(t, err, combat.ErrStatNotFound)

	id := uniqueName("alice")
	require.NoError(t, players.EnsureProfile(ctx, id, shellyGems))
	_, err = players.Get(ctx, id, combat.FieldBrawlers, "crow")
	assert.ErrorIs(t, err, combat.ErrStatNotFound)

	_, err = players.Get(ctx, id, "trophies")
	assert.ErrorIs(t, err, combat.ErrStatNotFound)
}

func TestOutcomeRepository_RecordResult(t *testing.T) {
	_, outcomes := setupRepos(t)
	ctx := context.Background()
	a, b := player(uniqueName("a")), player(uniqueName("b"))

	require.NoError(t, outcomes.RecordResult(ctx, a, b, combat.ModeGemGrab))
	require.NoError(t, outcomes.RecordResult(ctx, a, b, combat.ModeShowdown))
	require.NoError(t, outcomes.RecordResult(ctx, b, a, combat.ModeBrawlBall))

	ta, err := outcomes.Tally(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, ta.Wins)
	assert.Equal(t, 1, ta.Losses)

	tb, err := outcomes.Tally(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tb.Wins)
	assert.Equal(t, 2, tb.Losses)
}

func TestOutcomeRepository_DrawAndHouseLeaveTalliesUnchanged(t *testing.T) {
	_, outcomes := setupRepos(t)
	ctx := context.Background()
	a := player(uniqueName("a"))
	house := &combat.Participant{ID: matchmaking.HouseID, Name: "House", Kind: combat.KindHouse}

	require.NoError(t, outcomes.RecordResult(ctx, nil, nil, combat.ModeGemGrab))
	require.NoError(t, outcomes.RecordResult(ctx, house, a, combat.ModeGemGrab))

	ta, err := outcomes.Tally(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, ta.Wins)
	assert.Equal(t, 1, ta.Losses)

	th, err := outcomes.Tally(ctx, matchmaking.HouseID)
	require.NoError(t, err)
	assert.Zero(t, th.Wins)
}

func TestOutcomeRepository_BattleLogs(t *testing.T) {
	_, outcomes := setupRepos(t)
	ctx := context.Background()
	a := player(uniqueName("a"))

	for i := 0; i < 3; i++ {
		require.NoError(t, outcomes.RecordBattleLog(ctx, combat.BattleLogEntry{
			MatchID:      "match-" + strconv.Itoa(i),
			Participant:  *a,
			OpponentID:   matchmaking.HouseID,
			OpponentName: "House Colt",
			BrawlerID:    "shelly",
			BrawlerName:  "Shelly",
			BrawlerLevel: 3,
			Mode:         combat.ModeShowdown,
			Result:       combat.ResultVictory,
			Rounds:       10 + i,
		}))
	}

	logs, err := outcomes.BattleLogs(ctx, a.ID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "match-2", logs[0].MatchID)
	assert.Equal(t, "match-1", logs[1].MatchID)
	assert.Equal(t, *a, logs[0].Participant)
	assert.Equal(t, combat.ResultVictory, logs[0].Result)
	assert.Equal(t, 12, logs[0].Rounds)
}

func TestOutcomeRepository_BattleLogIdempotentPerMatch(t *testing.T) {
	_, outcomes := setupRepos(t)
	ctx := context.Background()
	a := player(uniqueName("a"))
	entry := combat.BattleLogEntry{
		MatchID: "m", Participant: *a, OpponentID: "b", OpponentName: "b",
		BrawlerID: "colt", BrawlerName: "Colt", BrawlerLevel: 1,
		Mode: combat.ModeGemGrab, Result: combat.ResultDraw, Rounds: 150,
	}
	require.NoError(t, outcomes.RecordBattleLog(ctx, entry))
	require.NoError(t, outcomes.RecordBattleLog(ctx, entry))

	logs, err := outcomes.BattleLogs(ctx, a.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

// Property: any valid loadout round-trips through SetLoadout and ReadLoadout.
func TestPropertySetLoadoutRoundTrip(t *testing.T) {
	players, _ := setupRepos(t)
	ctx := context.Background()
	modes := combat.ModeTags()

	rapid.Check(t, func(rt *rapid.T) {
		l := matchmaking.Loadout{
			BrawlerID: rapid.SampledFrom([]string{"shelly", "colt", "mortis", "frank"}).Draw(rt, "brawler"),
			Level:     rapid.IntRange(1, 10).Draw(rt, "level"),
			Mode:      rapid.SampledFrom(modes).Draw(rt, "mode"),
		}
		id := uniqueName("p")
		if err := players.SetLoadout(ctx, id, l); err != nil {
			rt.Fatalf("SetLoadout: %v", err)
		}
		got, err := matchmaking.ReadLoadout(ctx, players, id)
		if err != nil {
			rt.Fatalf("ReadLoadout: %v", err)
		}
		if got != l {
			rt.Fatalf("got %+v, want %+v", got, l)
		}
	})
}
