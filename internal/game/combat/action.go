package combat

// Move identifies what a combatant does on its turn.
// The zero value (MoveUnknown) is intentionally invalid.
type Move int

const (
	MoveUnknown     Move = iota // zero value; intentionally invalid
	MoveAttack                  // main attack against the opponent
	MoveObjective               // the mode's objective action
	MoveDodge                   // invincible for the next incoming hit
	MoveSuper                   // requires Streak >= SuperStreak
	MoveAttackSpawn             // attack the opponent's summoned unit
)

// String returns the human-readable name of the move.
func (m Move) String() string {
	switch m {
	case MoveAttack:
		return "attack"
	case MoveObjective:
		return "objective"
	case MoveDodge:
		return "dodge"
	case MoveSuper:
		return "super"
	case MoveAttackSpawn:
		return "attack spawn"
	default:
		return "unknown"
	}
}

// LegalMoves returns the moves actor may choose this turn: attack, objective
// and dodge, plus super when actor's super is ready, plus attack-spawn when
// the opponent has a live summoned unit.
//
// Postcondition: 3 <= len(result) <= 5; result order is stable.
func LegalMoves(actor, opponent *Combatant) []Move {
	moves := []Move{MoveAttack, MoveObjective, MoveDodge}
	if actor.SuperReady() {
		moves = append(moves, MoveSuper)
	}
	if opponent.HasSpawn() {
		moves = append(moves, MoveAttackSpawn)
	}
	return moves
}
