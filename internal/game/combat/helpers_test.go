package combat_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/testutil"
)

// testDef returns a plain brawler with 100 health and a 20 damage single shot.
func testDef(id string) *brawler.Definition {
	return &brawler.Definition{
		ID:        id,
		Name:      id,
		Health:    100,
		Archetype: brawler.ArchetypePlain,
		Attack:    brawler.Attack{Damage: 20, Projectiles: 1, Range: 6, Style: brawler.StyleStandard},
		Super:     brawler.Super{Name: id + " super", Damage: 30, Projectiles: 1},
		StarPowers: []brawler.StarPower{
			{Name: "One"}, {Name: "Two"},
		},
	}
}

func testSpawnerDef() *brawler.Definition {
	d := testDef("turret")
	d.Archetype = brawler.ArchetypeSpawner
	d.Super = brawler.Super{Name: "Scrappy", Projectiles: 1, Spawn: &brawler.Spawn{Name: "Scrappy", Damage: 10, Health: 40}}
	return d
}

// glassDef is a dummy with 10 health.
func glassDef() *brawler.Definition {
	d := testDef("glass")
	d.Health = 10
	return d
}

func testRegistry(t *testing.T) *brawler.Registry {
	t.Helper()
	reg := brawler.NewRegistry()
	for _, d := range []*brawler.Definition{
		testDef("dummy"),
		testDef(brawler.IDMortis),
		testDef(brawler.IDFrank),
		testDef(brawler.IDLeon),
		testSpawnerDef(),
		glassDef(),
	} {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

func seqRoller(values ...int) *dice.Roller {
	return dice.NewLoggedRoller(testutil.NewSequenceSource(values...), nil)
}

// script plays the listed moves in order, then times out.
type script struct {
	mu    sync.Mutex
	moves []combat.Move
	calls int
}

func play(moves ...combat.Move) *script { return &script{moves: moves} }

func (s *script) Choose(_ context.Context, req combat.ChoiceRequest) combat.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.moves) == 0 {
		return combat.Timeout()
	}
	want := s.moves[0]
	s.moves = s.moves[1:]
	for i, mv := range req.Moves {
		if mv == want {
			return combat.Choice(i)
		}
	}
	return combat.Rejected()
}

// always picks the same move forever.
func always(mv combat.Move) combat.Chooser {
	return combat.ChooserFunc(func(_ context.Context, req combat.ChoiceRequest) combat.Reply {
		for i, m := range req.Moves {
			if m == mv {
				return combat.Choice(i)
			}
		}
		return combat.Choice(0)
	})
}

// randomChooser picks uniformly using r.
func randomChooser(r *dice.Roller) combat.Chooser {
	return combat.ChooserFunc(func(_ context.Context, req combat.ChoiceRequest) combat.Reply {
		return combat.Choice(r.Intn(len(req.Options)))
	})
}

type resultCall struct {
	winner, loser *combat.Participant
	mode          combat.ModeTag
}

type recordingReporter struct {
	mu      sync.Mutex
	results []resultCall
	logs    []combat.BattleLogEntry
}

func (r *recordingReporter) RecordResult(_ context.Context, winner, loser *combat.Participant, mode combat.ModeTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, resultCall{winner: winner, loser: loser, mode: mode})
	return nil
}

func (r *recordingReporter) RecordBattleLog(_ context.Context, e combat.BattleLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, e)
	return nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []combat.Event
	// only records events delivered to this participant.
	only string
}

func (o *recordingObserver) Notify(_ context.Context, to combat.Participant, ev combat.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.only == "" || to.ID == o.only {
		o.events = append(o.events, ev)
	}
	return nil
}

func (o *recordingObserver) count(kind combat.EventKind) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, ev := range o.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (o *recordingObserver) find(kind combat.EventKind) (combat.Event, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ev := range o.events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return combat.Event{}, false
}

var (
	alice = combat.Participant{ID: "a", Name: "Alice", Kind: combat.KindPlayer}
	bob   = combat.Participant{ID: "b", Name: "Bob", Kind: combat.KindPlayer}
	house = combat.Participant{ID: "house", Name: "House", Kind: combat.KindHouse}
)

type duel struct {
	mode     combat.ModeTag
	a, b     combat.Participant
	aBrawler string
	bBrawler string
	aChooser combat.Chooser
	bChooser combat.Chooser
	roller   *dice.Roller
	timeout  time.Duration
}

func newDuel(t *testing.T, d duel) (*combat.Match, *recordingReporter, *recordingObserver) {
	t.Helper()
	if d.a.ID == "" {
		d.a = alice
	}
	if d.b.ID == "" {
		d.b = bob
	}
	if d.aBrawler == "" {
		d.aBrawler = "dummy"
	}
	if d.bBrawler == "" {
		d.bBrawler = "dummy"
	}
	rep := &recordingReporter{}
	obs := &recordingObserver{only: d.a.ID}
	m, err := combat.NewMatch(combat.Setup{
		Mode:          d.mode,
		Challenger:    combat.Entrant{Participant: d.a, BrawlerID: d.aBrawler, Level: 1, Chooser: d.aChooser},
		Opponent:      combat.Entrant{Participant: d.b, BrawlerID: d.bBrawler, Level: 1, Chooser: d.bChooser},
		Registry:      testRegistry(t),
		Roller:        d.roller,
		Reporter:      rep,
		Observer:      obs,
		ChoiceTimeout: d.timeout,
	})
	require.NoError(t, err)
	return m, rep, obs
}
