package combat

import "github.com/cory-johannsen/brawl/internal/game/dice"

// firstMover orders two combatants by a fair coin flip: heads keeps a first.
//
// Postcondition: returns a and b in some order.
func firstMover(r *dice.Roller, a, b *Combatant) (first, second *Combatant) {
	if r.CoinFlip("first mover") {
		return a, b
	}
	return b, a
}
