package sqlite_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
	"github.com/cory-johannsen/brawl/internal/storage/sqlite"
)

func openTempStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "brawl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func player(id string) *combat.Participant {
	return &combat.Participant{ID: id, Name: id, Kind: combat.KindPlayer}
}

var shellyGems = matchmaking.Loadout{BrawlerID: "shelly", Level: 3, Mode: combat.ModeGemGrab}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}

func TestOpenInMemory(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.EnsureProfile(context.Background(), "alice", shellyGems))
	got, err := store.Get(context.Background(), "alice", combat.FieldSelectedBrawler)
	require.NoError(t, err)
	assert.Equal(t, "shelly", got)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brawl.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordResult(context.Background(), player("alice"), player("bob"), combat.ModeShowdown))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()
	tally, err := store.Tally(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Wins)
}

func TestEnsureProfileAndReadLoadout(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureProfile(ctx, "alice", shellyGems))
	require.NoError(t, store.EnsureProfile(ctx, "alice", matchmaking.Loadout{BrawlerID: "colt", Level: 1, Mode: combat.ModeShowdown}))

	got, err := matchmaking.ReadLoadout(ctx, store, "alice")
	require.NoError(t, err)
	assert.Equal(t, shellyGems, got)
}

func TestSetLoadoutKeepsOtherBrawlerLevels(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureProfile(ctx, "bob", shellyGems))
	next := matchmaking.Loadout{BrawlerID: "mortis", Level: 10, Mode: combat.ModeBrawlBall}
	require.NoError(t, store.SetLoadout(ctx, "bob", next))

	got, err := matchmaking.ReadLoadout(ctx, store, "bob")
	require.NoError(t, err)
	assert.Equal(t, next, got)

	level, err := store.Get(ctx, "bob", combat.FieldBrawlers, "shelly")
	require.NoError(t, err)
	assert.Equal(t, "3", level)
}

func TestSetLoadoutRejectsInvalid(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	err := store.SetLoadout(ctx, "x", matchmaking.Loadout{BrawlerID: "shelly", Level: 0, Mode: combat.ModeGemGrab})
	assert.ErrorIs(t, err, combat.ErrInvalidLevel)

	err = store.SetLoadout(ctx, "x", matchmaking.Loadout{BrawlerID: "shelly", Level: 2, Mode: "heist"})
	assert.ErrorIs(t, err, combat.ErrUnknownMode)

	err = store.SetLoadout(ctx, "x", matchmaking.Loadout{Level: 2, Mode: combat.ModeGemGrab})
	assert.Error(t, err)
}

func TestGetNotFound(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "ghost", combat.FieldSelectedGameMode)
	assert.ErrorIs(t, err, combat.ErrStatNotFound)

	require.NoError(t, store.EnsureProfile(ctx, "alice", shellyGems))
	_, err = store.Get(ctx, "alice", combat.FieldBrawlers, "crow")
	assert.ErrorIs(t, err, combat.ErrStatNotFound)

	_, err = store.Get(ctx, "alice", combat.FieldBrawlers)
	assert.ErrorIs(t, err, combat.ErrStatNotFound)

	_, err = store.Get(ctx, "alice", "trophies")
	assert.ErrorIs(t, err, combat.ErrStatNotFound)
}

func TestRecordResultTallies(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	a, b := player("alice"), player("bob")
	house := &combat.Participant{ID: matchmaking.HouseID, Name: "House Colt", Kind: combat.KindHouse}

	require.NoError(t, store.RecordResult(ctx, a, b, combat.ModeGemGrab))
	require.NoError(t, store.RecordResult(ctx, a, house, combat.ModeGemGrab))
	require.NoError(t, store.RecordResult(ctx, house, b, combat.ModeShowdown))
	require.NoError(t, store.RecordResult(ctx, nil, nil, combat.ModeBrawlBall))

	ta, err := store.Tally(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, ta.Wins)
	assert.Equal(t, 0, ta.Losses)

	tb, err := store.Tally(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, tb.Wins)
	assert.Equal(t, 2, tb.Losses)

	th, err := store.Tally(ctx, matchmaking.HouseID)
	require.NoError(t, err)
	assert.Zero(t, th.Wins+th.Losses)
}

func TestBattleLogsNewestFirst(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	a := player("alice")

	for i := 0; i < 4; i++ {
		entry := combat.BattleLogEntry{
			MatchID:      "m" + strconv.Itoa(i),
			Participant:  *a,
			OpponentID:   matchmaking.HouseID,
			OpponentName: "House Colt",
			BrawlerID:    "shelly",
			BrawlerName:  "Shelly",
			BrawlerLevel: 4,
			Mode:         combat.ModeGemGrab,
			Result:       combat.ResultDefeat,
			Rounds:       i,
		}
		if i == 3 {
			entry.ForfeitReason = "timeout"
		}
		require.NoError(t, store.RecordBattleLog(ctx, entry))
	}

	logs, err := store.BattleLogs(ctx, "alice", 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "m3", logs[0].MatchID)
	assert.Equal(t, "timeout", logs[0].ForfeitReason)
	assert.Equal(t, *a, logs[0].Participant)
	assert.Equal(t, 4, logs[0].BrawlerLevel)
	assert.Equal(t, combat.ResultDefeat, logs[2].Result)
}

func TestBattleLogSkipsHouseAndDuplicates(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	entry := combat.BattleLogEntry{
		MatchID: "m", Participant: *player("alice"), OpponentID: "bob", OpponentName: "bob",
		BrawlerID: "colt", BrawlerName: "Colt", BrawlerLevel: 1,
		Mode: combat.ModeShowdown, Result: combat.ResultDraw, Rounds: 100,
	}
	require.NoError(t, store.RecordBattleLog(ctx, entry))
	require.NoError(t, store.RecordBattleLog(ctx, entry))

	houseEntry := entry
	houseEntry.Participant = combat.Participant{ID: matchmaking.HouseID, Kind: combat.KindHouse}
	require.NoError(t, store.RecordBattleLog(ctx, houseEntry))

	logs, err := store.BattleLogs(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	logs, err = store.BattleLogs(ctx, matchmaking.HouseID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestCancelledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.RecordResult(ctx, player("a"), player("b"), combat.ModeGemGrab))
}

// Property: tallies equal the number of wins and losses recorded.
func TestPropertyTalliesCountResults(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store, err := sqlite.Open(":memory:")
		if err != nil {
			rt.Fatalf("open: %v", err)
		}
		defer store.Close()
		ctx := context.Background()

		outcomes := rapid.SliceOfN(rapid.IntRange(0, 2), 0, 20).Draw(rt, "outcomes")
		var wins, losses int
		for _, o := range outcomes {
			var err error
			switch o {
			case 0:
				err = store.RecordResult(ctx, player("alice"), player("bob"), combat.ModeGemGrab)
				wins++
			case 1:
				err = store.RecordResult(ctx, player("bob"), player("alice"), combat.ModeGemGrab)
				losses++
			default:
				err = store.RecordResult(ctx, nil, nil, combat.ModeGemGrab)
			}
			if err != nil {
				rt.Fatalf("record: %v", err)
			}
		}
		got, err := store.Tally(ctx, "alice")
		if err != nil {
			rt.Fatalf("tally: %v", err)
		}
		if got.Wins != wins || got.Losses != losses {
			rt.Fatalf("tally %+v, want wins=%d losses=%d", got, wins, losses)
		}
	})
}
