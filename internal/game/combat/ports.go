package combat

import (
	"context"
	"errors"
)

// RequestKind distinguishes a challenge prompt from a move prompt.
type RequestKind int

const (
	RequestMove RequestKind = iota
	RequestChallenge
)

// ChoiceRequest is what the engine presents to a participant.
type ChoiceRequest struct {
	Kind        RequestKind
	MatchID     string
	Participant Participant
	Mode        ModeTag
	Round       int
	// Options are the labels shown to the participant, one per choice.
	Options []string
	// Moves parallels Options for RequestMove; nil for RequestChallenge.
	Moves    []Move
	Self     Snapshot
	Opponent Snapshot
}

// ReplyKind tags the variant held by a Reply.
type ReplyKind int

const (
	ReplyChoice ReplyKind = iota
	ReplyTimeout
	ReplyRejected
	ReplyUnreachable
)

// String returns the reply kind name.
func (k ReplyKind) String() string {
	switch k {
	case ReplyChoice:
		return "choice"
	case ReplyTimeout:
		return "timeout"
	case ReplyRejected:
		return "rejected"
	case ReplyUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Reply is the answer to a ChoiceRequest. Index is meaningful only when
// Kind == ReplyChoice.
type Reply struct {
	Kind  ReplyKind
	Index int
}

// Choice returns a ReplyChoice selecting index.
func Choice(index int) Reply { return Reply{Kind: ReplyChoice, Index: index} }

// Timeout returns a ReplyTimeout.
func Timeout() Reply { return Reply{Kind: ReplyTimeout} }

// Rejected returns a ReplyRejected.
func Rejected() Reply { return Reply{Kind: ReplyRejected} }

// Unreachable returns a ReplyUnreachable.
func Unreachable() Reply { return Reply{Kind: ReplyUnreachable} }

// Chooser is the action input port. Choose must honour ctx: once ctx is done
// the engine treats the request as timed out regardless of the reply.
type Chooser interface {
	Choose(ctx context.Context, req ChoiceRequest) Reply
}

// Immediate is implemented by choosers that answer at once without I/O. The
// engine calls them inline, with no goroutine or deadline.
type Immediate interface {
	Immediate() bool
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, req ChoiceRequest) Reply

// Choose calls f.
func (f ChooserFunc) Choose(ctx context.Context, req ChoiceRequest) Reply { return f(ctx, req) }

// ResultTag is the per-participant outcome label written to battle logs.
type ResultTag string

const (
	ResultVictory ResultTag = "victory"
	ResultDefeat  ResultTag = "defeat"
	ResultDraw    ResultTag = "draw"
)

// BattleLogEntry is one participant's record of a finished match.
type BattleLogEntry struct {
	MatchID       string
	Participant   Participant
	OpponentID    string
	OpponentName  string
	BrawlerID     string
	BrawlerName   string
	BrawlerLevel  int
	Mode          ModeTag
	Result        ResultTag
	Rounds        int
	ForfeitReason string
}

// Reporter is the outcome reporting port.
type Reporter interface {
	// RecordResult is called exactly once per completed match. winner and
	// loser are both nil on a draw.
	RecordResult(ctx context.Context, winner, loser *Participant, mode ModeTag) error
	// RecordBattleLog is called once per human participant.
	RecordBattleLog(ctx context.Context, entry BattleLogEntry) error
}

// Stat fields understood by a StatAccessor.
const (
	FieldSelectedBrawler  = "selected_brawler"
	FieldBrawlers         = "brawlers"
	FieldSelectedGameMode = "selected_gamemode"
)

// ErrStatNotFound is returned by a StatAccessor for an unknown identity or field.
var ErrStatNotFound = errors.New("stat not found")

// StatAccessor reads persistent per-participant stats. Get(ctx, id,
// FieldBrawlers, brawlerID) returns the level of that brawler as a decimal
// string.
type StatAccessor interface {
	Get(ctx context.Context, identity, field string, subfield ...string) (string, error)
}

// ErrNoInbox is returned by an Observer that has nowhere to deliver events
// for a participant.
var ErrNoInbox = errors.New("participant has no inbox")

// Observer receives every event of a match, once per participant.
type Observer interface {
	Notify(ctx context.Context, to Participant, ev Event) error
}

// NopObserver discards every event.
type NopObserver struct{}

// Notify returns nil.
func (NopObserver) Notify(context.Context, Participant, Event) error { return nil }

// MultiObserver fans each event out to observers keyed by participant ID.
// Participants without an entry yield ErrNoInbox.
type MultiObserver map[string]Observer

// Notify delivers ev to the observer registered for to.ID.
func (m MultiObserver) Notify(ctx context.Context, to Participant, ev Event) error {
	o, ok := m[to.ID]
	if !ok || o == nil {
		return ErrNoInbox
	}
	return o.Notify(ctx, to, ev)
}
