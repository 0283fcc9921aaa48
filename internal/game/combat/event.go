package combat

import "fmt"

// EventKind classifies a match event.
type EventKind int

const (
	EventMatchStart EventKind = iota
	EventAttack
	EventMiss
	EventNullified
	EventDodge
	EventSuper
	EventHeal
	EventInvisible
	EventStun
	EventStunned
	EventSpawnSummoned
	EventSpawnAttacked
	EventSpawnDestroyed
	EventSpawnAction
	EventObjective
	EventPassiveHeal
	EventPoison
	EventDefeated
	EventRespawned
	EventForfeit
	EventMatchOver
)

// Event is one narrated step of a match.
type Event struct {
	Round     int
	Kind      EventKind
	ActorID   string
	TargetID  string
	Move      Move
	Amount    int
	Narrative string
}

// String returns the narrative prefixed by the round number.
func (e Event) String() string {
	return fmt.Sprintf("[round %d] %s", e.Round, e.Narrative)
}
