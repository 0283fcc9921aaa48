package combat

import "fmt"

const (
	// GemsToWin is the gem count that ends a gem grab match.
	GemsToWin        = 10
	gemGrabLimit     = 150
	gemCollectChance = 75
)

var gemGrab = &Mode{
	Tag:        ModeGemGrab,
	Name:       "Gem Grab",
	RoundLimit: gemGrabLimit,
	Objective:  "collect gem",
	objective:  collectGem,
	onDefeat:   dropGems,
	decide:     decideGems,
}

// collectGem takes a random share of the drop pool when it holds gems,
// otherwise mines a single gem with a 75% chance.
func collectGem(m *Match, actor, _ *Combatant) {
	if m.GemPool > 0 {
		n := m.roller.IntRange("gem pool collect", 0, m.GemPool)
		m.GemPool -= n
		actor.Gems += n
		m.emit(Event{
			Kind:      EventObjective,
			ActorID:   actor.ID,
			Move:      MoveObjective,
			Amount:    n,
			Narrative: fmt.Sprintf("%s picked up %d dropped gems (%d held).", actor.Name, n, actor.Gems),
		})
		return
	}
	if !m.roller.Percent("gem collect", gemCollectChance) {
		m.emit(Event{
			Kind:      EventObjective,
			ActorID:   actor.ID,
			Move:      MoveObjective,
			Narrative: fmt.Sprintf("%s reached for a gem and came up empty.", actor.Name),
		})
		return
	}
	actor.Gems++
	m.emit(Event{
		Kind:      EventObjective,
		ActorID:   actor.ID,
		Move:      MoveObjective,
		Amount:    1,
		Narrative: fmt.Sprintf("%s collected a gem (%d held).", actor.Name, actor.Gems),
	})
}

// dropGems moves half the defeated combatant's gems, rounded up, into the pool.
func dropGems(m *Match, c *Combatant) {
	drop := (c.Gems + 1) / 2
	c.Gems -= drop
	m.GemPool += drop
	if drop > 0 {
		m.emit(Event{
			Kind:      EventObjective,
			ActorID:   c.ID,
			Amount:    drop,
			Narrative: fmt.Sprintf("%s dropped %d gems.", c.Name, drop),
		})
	}
	respawn(m, c)
}

func decideGems(m *Match) Decision {
	a := m.First.Gems >= GemsToWin
	b := m.Second.Gems >= GemsToWin
	switch {
	case a && b:
		return Decision{Over: true}
	case a:
		return Decision{Over: true, Winner: m.First}
	case b:
		return Decision{Over: true, Winner: m.Second}
	}
	return Decision{}
}
