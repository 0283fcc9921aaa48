package combat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/dice"
)

// DefaultChoiceTimeout bounds a single move solicitation when Setup leaves it unset.
const DefaultChoiceTimeout = 30 * time.Second

// Entrant is one side of a match before it starts.
type Entrant struct {
	Participant
	BrawlerID string
	Level     int
	// Chooser answers this participant's move prompts.
	Chooser Chooser
}

// Setup collects everything NewMatch needs.
type Setup struct {
	Mode       ModeTag
	Challenger Entrant
	Opponent   Entrant
	Registry   *brawler.Registry
	Roller     *dice.Roller
	Reporter   Reporter
	// Observer is optional; nil discards events.
	Observer Observer
	// Logger is optional; nil disables logging.
	Logger        *zap.Logger
	ChoiceTimeout time.Duration
	// InMatch is an optional admission query; NewMatch never mutates admission state.
	InMatch func(id string) bool
}

// EndReason explains how a match ended.
type EndReason int

const (
	EndObjective EndReason = iota
	EndTimeUp
	EndForfeit
)

// String returns the end reason name.
func (r EndReason) String() string {
	switch r {
	case EndObjective:
		return "objective"
	case EndTimeUp:
		return "time up"
	case EndForfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

// Result is the outcome of a completed match. Winner and Loser are nil on a draw.
type Result struct {
	MatchID string
	Mode    ModeTag
	Winner  *Participant
	Loser   *Participant
	Reason  EndReason
	Rounds  int
	// ForfeitReply is the reply that caused a forfeit; zero otherwise.
	ForfeitReply ReplyKind
}

// Draw reports whether the match ended without a winner.
func (r Result) Draw() bool { return r.Winner == nil }

// TagFor returns the battle-log result for the participant with id.
func (r Result) TagFor(id string) ResultTag {
	switch {
	case r.Draw():
		return ResultDraw
	case r.Winner.ID == id:
		return ResultVictory
	default:
		return ResultDefeat
	}
}

// Match is the live state of a single duel. A Match is driven by exactly one
// goroutine calling Run.
type Match struct {
	ID   string
	Mode *Mode
	// First acts on even round indexes, Second on odd ones.
	First  *Combatant
	Second *Combatant
	Round  int
	// GemPool holds gems dropped on defeat in gem grab.
	GemPool int

	choosers map[string]Chooser
	roller   *dice.Roller
	reporter Reporter
	observer Observer
	logger   *zap.Logger
	timeout  time.Duration
	pending  []Event
	done     bool
}

// NewMatch validates setup and builds a match ready to Run. The first mover
// is decided by a fair coin flip.
//
// Precondition: setup.Roller and setup.Registry must not be nil.
// Postcondition: Returns a match with both combatants at full health, or an
// error wrapping ErrUnknownMode, ErrUnknownBrawler, ErrInvalidLevel or
// ErrAlreadyInMatch.
func NewMatch(setup Setup) (*Match, error) {
	mode, err := ModeByTag(setup.Mode)
	if err != nil {
		return nil, err
	}
	if setup.Reporter == nil {
		return nil, errors.New("combat: reporter must not be nil")
	}
	if setup.Roller == nil {
		return nil, errors.New("combat: roller must not be nil")
	}
	if setup.Challenger.ID == "" || setup.Opponent.ID == "" {
		return nil, errors.New("combat: participant id must not be empty")
	}
	if setup.Challenger.ID == setup.Opponent.ID {
		return nil, fmt.Errorf("combat: participant %q cannot duel itself", setup.Challenger.ID)
	}
	a, err := buildCombatant(setup.Registry, setup.Challenger)
	if err != nil {
		return nil, err
	}
	b, err := buildCombatant(setup.Registry, setup.Opponent)
	if err != nil {
		return nil, err
	}
	if setup.InMatch != nil {
		for _, e := range []Entrant{setup.Challenger, setup.Opponent} {
			if setup.InMatch(e.ID) {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyInMatch, e.ID)
			}
		}
	}

	m := &Match{
		ID:   uuid.NewString(),
		Mode: mode,
		choosers: map[string]Chooser{
			setup.Challenger.ID: setup.Challenger.Chooser,
			setup.Opponent.ID:   setup.Opponent.Chooser,
		},
		roller:   setup.Roller,
		reporter: setup.Reporter,
		observer: setup.Observer,
		logger:   setup.Logger,
		timeout:  setup.ChoiceTimeout,
	}
	if m.observer == nil {
		m.observer = NopObserver{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.timeout <= 0 {
		m.timeout = DefaultChoiceTimeout
	}
	m.First, m.Second = firstMover(setup.Roller, a, b)
	return m, nil
}

func buildCombatant(reg *brawler.Registry, e Entrant) (*Combatant, error) {
	if e.Chooser == nil {
		return nil, fmt.Errorf("combat: participant %q has no chooser", e.ID)
	}
	def, err := reg.Get(e.BrawlerID)
	if err != nil {
		return nil, err
	}
	if !brawler.ValidLevel(e.Level) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, e.Level)
	}
	return NewCombatant(e.Participant, def, e.Level), nil
}

// Combatant returns the combatant for participant id, or nil.
func (m *Match) Combatant(id string) *Combatant {
	switch id {
	case m.First.ID:
		return m.First
	case m.Second.ID:
		return m.Second
	}
	return nil
}

// turnOrder returns the acting combatant for the current round and its opponent.
func (m *Match) turnOrder() (actor, opponent *Combatant) {
	if m.Round%2 == 0 {
		return m.First, m.Second
	}
	return m.Second, m.First
}

// Decide returns the mode's verdict on the current state without ending the match.
func (m *Match) Decide() Decision {
	return m.Mode.decide(m)
}

func (m *Match) emit(ev Event) {
	ev.Round = m.Round
	m.pending = append(m.pending, ev)
}

// Run drives the match to completion and reports the outcome. It returns a
// non-nil error when ctx is cancelled before the match ends (nothing is
// recorded), when a participant is unreachable (the forfeit is recorded and
// the error wraps ErrDeliveryFailure), or when reporting fails.
//
// Precondition: Run is called at most once.
func (m *Match) Run(ctx context.Context) (Result, error) {
	if m.done {
		return Result{}, errors.New("combat: match already run")
	}
	m.done = true
	m.logger.Info("match started",
		zap.String("match_id", m.ID),
		zap.String("mode", string(m.Mode.Tag)),
		zap.String("first", m.First.ID),
		zap.String("first_brawler", m.First.Brawler.ID),
		zap.Int("first_level", m.First.Level),
		zap.String("second", m.Second.ID),
		zap.String("second_brawler", m.Second.Brawler.ID),
		zap.Int("second_level", m.Second.Level),
	)
	m.emit(Event{
		Kind: EventMatchStart,
		Narrative: fmt.Sprintf("%s: %s (%s, level %d) vs %s (%s, level %d). %s moves first.",
			m.Mode.Name,
			m.First.Name, m.First.Brawler.Name, m.First.Level,
			m.Second.Name, m.Second.Brawler.Name, m.Second.Level,
			m.First.Name),
	})
	if res, over, err := m.flushOrForfeit(ctx); over {
		return res, err
	}

	for m.Round < m.Mode.RoundLimit {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		actor, opponent := m.turnOrder()

		if m.Mode.beforeTurn != nil {
			m.Mode.beforeTurn(m)
			if d := m.Mode.decide(m); d.Over {
				return m.finish(ctx, d.Winner, EndObjective, ReplyChoice)
			}
		}

		reply, err := m.takeTurn(ctx, actor, opponent)
		if err != nil {
			return Result{}, err
		}
		if reply != ReplyChoice {
			res, ferr := m.finish(ctx, opponent, EndForfeit, reply)
			if reply == ReplyUnreachable {
				ferr = errors.Join(fmt.Errorf("%w: %s", ErrDeliveryFailure, actor.ID), ferr)
			}
			return res, ferr
		}
		if res, over, err := m.flushOrForfeit(ctx); over {
			return res, err
		}
		if d := m.Mode.decide(m); d.Over {
			return m.finish(ctx, d.Winner, EndObjective, ReplyChoice)
		}
		m.Round++
	}
	return m.finish(ctx, nil, EndTimeUp, ReplyChoice)
}

// takeTurn plays the acting combatant's half-round. A non-choice reply means
// the actor forfeits.
func (m *Match) takeTurn(ctx context.Context, actor, opponent *Combatant) (ReplyKind, error) {
	if actor.Respawning {
		actor.Respawning = false
		actor.RestoreHealth()
		m.emit(Event{
			Kind:      EventRespawned,
			ActorID:   actor.ID,
			Narrative: fmt.Sprintf("%s respawned with %d HP.", actor.Name, actor.Health),
		})
		return ReplyChoice, nil
	}

	if actor.LastActionRound+PassiveHealIdle < m.Round {
		if healed := actor.Heal(PassiveHeal); healed > 0 {
			m.emit(Event{
				Kind:      EventPassiveHeal,
				ActorID:   actor.ID,
				Amount:    healed,
				Narrative: fmt.Sprintf("%s recovered %d HP while out of the fight.", actor.Name, healed),
			})
		}
	}

	if actor.Stunned {
		actor.Stunned = false
		m.emit(Event{
			Kind:      EventStunned,
			ActorID:   actor.ID,
			Narrative: fmt.Sprintf("%s is stunned and loses the turn.", actor.Name),
		})
		return ReplyChoice, nil
	}

	moves := LegalMoves(actor, opponent)
	reply := m.solicit(ctx, actor, opponent, moves)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if reply.Kind == ReplyChoice && (reply.Index < 0 || reply.Index >= len(moves)) {
		m.logger.Warn("chooser returned out-of-range index",
			zap.String("match_id", m.ID),
			zap.String("participant", actor.ID),
			zap.Int("index", reply.Index),
			zap.Int("moves", len(moves)),
		)
		reply = Rejected()
	}
	if reply.Kind != ReplyChoice {
		m.logger.Warn("participant forfeits",
			zap.String("match_id", m.ID),
			zap.String("participant", actor.ID),
			zap.Stringer("reply", reply.Kind),
		)
		return reply.Kind, nil
	}

	move := moves[reply.Index]
	m.resolve(actor, opponent, move)
	m.spawnAction(opponent, actor)
	m.handleDefeats(actor, opponent)
	m.logger.Debug("move resolved",
		zap.String("match_id", m.ID),
		zap.Int("round", m.Round),
		zap.String("actor", actor.ID),
		zap.Stringer("move", move),
		zap.Int("actor_hp", actor.Health),
		zap.Int("opponent_hp", opponent.Health),
	)
	return ReplyChoice, nil
}

// solicit asks actor's chooser for a move, bounded by the choice timeout.
func (m *Match) solicit(ctx context.Context, actor, opponent *Combatant, moves []Move) Reply {
	options := make([]string, len(moves))
	for i, mv := range moves {
		options[i] = m.moveLabel(actor, mv)
	}
	req := ChoiceRequest{
		Kind:        RequestMove,
		MatchID:     m.ID,
		Participant: actor.Participant,
		Mode:        m.Mode.Tag,
		Round:       m.Round,
		Options:     options,
		Moves:       moves,
		Self:        actor.Snapshot(),
		Opponent:    opponent.Snapshot(),
	}
	return boundedChoose(ctx, m.choosers[actor.ID], req, m.timeout)
}

// boundedChoose calls ch.Choose and converts an expired deadline into Timeout
// even when the chooser ignores ctx. Immediate choosers are called inline.
func boundedChoose(ctx context.Context, ch Chooser, req ChoiceRequest, timeout time.Duration) Reply {
	if im, ok := ch.(Immediate); ok && im.Immediate() {
		return ch.Choose(ctx, req)
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	done := make(chan Reply, 1)
	go func() { done <- ch.Choose(cctx, req) }()
	select {
	case r := <-done:
		if r.Kind == ReplyChoice && cctx.Err() != nil {
			return Timeout()
		}
		return r
	case <-cctx.Done():
		return Timeout()
	}
}

func (m *Match) moveLabel(actor *Combatant, mv Move) string {
	switch mv {
	case MoveAttack:
		return "Attack"
	case MoveObjective:
		return capitalize(m.Mode.Objective)
	case MoveDodge:
		return "Dodge"
	case MoveSuper:
		if actor.Brawler.Super.Name != "" {
			return "Super: " + actor.Brawler.Super.Name
		}
		return "Super"
	case MoveAttackSpawn:
		return "Attack spawn"
	}
	return mv.String()
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// flushOrForfeit delivers pending events to both participants. A delivery
// failure to a human participant ends the match as that participant's forfeit.
func (m *Match) flushOrForfeit(ctx context.Context) (Result, bool, error) {
	failed := m.flush(ctx)
	if failed == nil {
		return Result{}, false, nil
	}
	winner := m.First
	if failed == m.First {
		winner = m.Second
	}
	res, err := m.finish(ctx, winner, EndForfeit, ReplyUnreachable)
	return res, true, errors.Join(fmt.Errorf("%w: %s", ErrDeliveryFailure, failed.ID), err)
}

// flush returns the first combatant that could not be notified, or nil.
func (m *Match) flush(ctx context.Context) *Combatant {
	events := m.pending
	m.pending = nil
	for _, ev := range events {
		for _, c := range []*Combatant{m.First, m.Second} {
			err := m.observer.Notify(ctx, c.Participant, ev)
			if err == nil || (c.IsHouse() && errors.Is(err, ErrNoInbox)) {
				continue
			}
			m.logger.Warn("event delivery failed",
				zap.String("match_id", m.ID),
				zap.String("participant", c.ID),
				zap.Error(err),
			)
			return c
		}
	}
	return nil
}

// finish records the outcome exactly once. RecordResult and every human
// battle log are attempted even if an earlier report fails.
func (m *Match) finish(ctx context.Context, winner *Combatant, reason EndReason, reply ReplyKind) (Result, error) {
	res := Result{
		MatchID: m.ID,
		Mode:    m.Mode.Tag,
		Reason:  reason,
		Rounds:  m.Round,
	}
	if reason == EndForfeit {
		res.ForfeitReply = reply
	}
	var loser *Combatant
	if winner != nil {
		loser = m.First
		if winner == m.First {
			loser = m.Second
		}
		w, l := winner.Participant, loser.Participant
		res.Winner, res.Loser = &w, &l
	}

	over := Event{Kind: EventMatchOver}
	switch {
	case winner == nil:
		over.Narrative = fmt.Sprintf("The match ends in a draw (%s).", reason)
	default:
		over.ActorID = winner.ID
		over.Narrative = fmt.Sprintf("%s wins by %s.", winner.Name, reason)
	}
	m.emit(over)
	m.flush(ctx)

	var errs []error
	if err := m.reporter.RecordResult(ctx, res.Winner, res.Loser, m.Mode.Tag); err != nil {
		errs = append(errs, fmt.Errorf("recording result: %w", err))
	}
	for _, c := range []*Combatant{m.First, m.Second} {
		if c.IsHouse() {
			continue
		}
		opp := m.First
		if c == m.First {
			opp = m.Second
		}
		entry := BattleLogEntry{
			MatchID:      m.ID,
			Participant:  c.Participant,
			OpponentID:   opp.ID,
			OpponentName: opp.Name,
			BrawlerID:    c.Brawler.ID,
			BrawlerName:  c.Brawler.Name,
			BrawlerLevel: c.Level,
			Mode:         m.Mode.Tag,
			Result:       res.TagFor(c.ID),
			Rounds:       m.Round,
		}
		if reason == EndForfeit {
			entry.ForfeitReason = reply.String()
		}
		if err := m.reporter.RecordBattleLog(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("recording battle log for %s: %w", c.ID, err))
		}
	}

	fields := []zap.Field{
		zap.String("match_id", m.ID),
		zap.String("mode", string(m.Mode.Tag)),
		zap.Stringer("reason", reason),
		zap.Int("rounds", m.Round),
	}
	if winner != nil {
		fields = append(fields, zap.String("winner", winner.ID))
	}
	m.logger.Info("match finished", fields...)
	return res, errors.Join(errs...)
}
