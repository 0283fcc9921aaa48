package combat

import "fmt"

const (
	showdownLimit = 100
	// PoisonRound is the first round index at which the poison cloud hurts.
	PoisonRound   = 40
	PoisonDamage  = 100
	powerUpChance = 50
)

var showdown = &Mode{
	Tag:        ModeShowdown,
	Name:       "Showdown",
	RoundLimit: showdownLimit,
	Objective:  "collect power-up",
	beforeTurn: poisonCloud,
	objective:  collectPowerUp,
	decide:     decideSurvivor,
}

func poisonCloud(m *Match) {
	if m.Round < PoisonRound {
		return
	}
	for _, c := range []*Combatant{m.First, m.Second} {
		c.ApplyDamage(PoisonDamage)
		m.emit(Event{
			Kind:      EventPoison,
			TargetID:  c.ID,
			Amount:    PoisonDamage,
			Narrative: fmt.Sprintf("The poison cloud deals %d damage to %s (%d HP).", PoisonDamage, c.Name, c.Health),
		})
	}
}

func collectPowerUp(m *Match, actor, _ *Combatant) {
	if !m.roller.Percent("power-up collect", powerUpChance) {
		m.emit(Event{
			Kind:      EventObjective,
			ActorID:   actor.ID,
			Move:      MoveObjective,
			Narrative: fmt.Sprintf("%s searched for a power-up and found nothing.", actor.Name),
		})
		return
	}
	actor.AddPowerUp()
	m.emit(Event{
		Kind:      EventObjective,
		ActorID:   actor.ID,
		Move:      MoveObjective,
		Amount:    PowerUpHealth,
		Narrative: fmt.Sprintf("%s collected a power-up (%d total, %d/%d HP).", actor.Name, actor.PowerUps, actor.Health, actor.StaticHealth),
	})
}

func decideSurvivor(m *Match) Decision {
	a := m.First.IsDefeated()
	b := m.Second.IsDefeated()
	switch {
	case a && b:
		return Decision{Over: true}
	case b:
		return Decision{Over: true, Winner: m.First}
	case a:
		return Decision{Over: true, Winner: m.Second}
	}
	return Decision{}
}
