package combat

import (
	"fmt"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
)

// resolve applies the chosen move.
//
// Precondition: move is one of LegalMoves(actor, opponent).
func (m *Match) resolve(actor, opponent *Combatant, move Move) {
	switch move {
	case MoveAttack:
		m.attack(actor, opponent)
	case MoveObjective:
		m.Mode.objective(m, actor, opponent)
	case MoveDodge:
		m.dodge(actor, opponent)
	case MoveSuper:
		m.super(actor, opponent)
	case MoveAttackSpawn:
		m.attackSpawn(actor, opponent)
	}
}

// hit deals amount to target unless target is invincible, in which case the
// invincibility is consumed instead. Reports whether the hit landed.
func (m *Match) hit(source string, target *Combatant, amount int, move Move) bool {
	if target.Invincible {
		target.Invincible = false
		m.emit(Event{
			Kind:      EventNullified,
			ActorID:   source,
			TargetID:  target.ID,
			Move:      move,
			Narrative: fmt.Sprintf("%s evaded the hit.", target.Name),
		})
		return false
	}
	target.ApplyDamage(amount)
	return true
}

func (m *Match) attack(actor, opponent *Combatant) {
	actor.LastActionRound = m.Round
	dmg := actor.Boost(actor.Brawler.ResolveAttack(m.roller, actor.Level))
	if !m.hit(actor.ID, opponent, dmg, MoveAttack) {
		return
	}
	actor.Streak++
	if dmg == 0 {
		m.emit(Event{
			Kind:      EventMiss,
			ActorID:   actor.ID,
			TargetID:  opponent.ID,
			Move:      MoveAttack,
			Narrative: fmt.Sprintf("%s attacked %s and missed.", actor.Name, opponent.Name),
		})
		return
	}
	m.emit(Event{
		Kind:      EventAttack,
		ActorID:   actor.ID,
		TargetID:  opponent.ID,
		Move:      MoveAttack,
		Amount:    dmg,
		Narrative: fmt.Sprintf("%s hit %s for %d damage (%d HP left).", actor.Name, opponent.Name, dmg, opponent.Health),
	})
}

func (m *Match) dodge(actor, opponent *Combatant) {
	actor.Invincible = true
	opponent.Invincible = false
	m.emit(Event{
		Kind:      EventDodge,
		ActorID:   actor.ID,
		Move:      MoveDodge,
		Narrative: fmt.Sprintf("%s dodged and is ready to evade the next hit.", actor.Name),
	})
}

// super resolves the super. Mortis, Frank and Leon have fixed special rules;
// every other brawler follows its archetype.
func (m *Match) super(actor, opponent *Combatant) {
	actor.Streak = 0
	actor.LastActionRound = m.Round
	def := actor.Brawler
	name := def.Super.Name
	if name == "" {
		name = "super"
	}

	if def.ID == brawler.IDLeon {
		actor.Invincible = true
		m.emit(Event{
			Kind:      EventInvisible,
			ActorID:   actor.ID,
			Move:      MoveSuper,
			Narrative: fmt.Sprintf("%s used %s and vanished from sight.", actor.Name, name),
		})
		return
	}

	eff, spawnHealth := def.ResolveSuper(m.roller, actor.Level)
	amount := actor.Boost(eff.Amount)

	if eff.Heal {
		healed := actor.Heal(amount)
		m.emit(Event{
			Kind:      EventHeal,
			ActorID:   actor.ID,
			Move:      MoveSuper,
			Amount:    healed,
			Narrative: fmt.Sprintf("%s used %s and healed %d HP (%d HP).", actor.Name, name, healed, actor.Health),
		})
	} else if m.hit(actor.ID, opponent, amount, MoveSuper) {
		m.emit(Event{
			Kind:      EventSuper,
			ActorID:   actor.ID,
			TargetID:  opponent.ID,
			Move:      MoveSuper,
			Amount:    amount,
			Narrative: fmt.Sprintf("%s used %s on %s for %d damage (%d HP left).", actor.Name, name, opponent.Name, amount, opponent.Health),
		})
		switch def.ID {
		case brawler.IDMortis:
			healed := actor.Heal(amount)
			m.emit(Event{
				Kind:      EventHeal,
				ActorID:   actor.ID,
				Move:      MoveSuper,
				Amount:    healed,
				Narrative: fmt.Sprintf("%s drained %d HP (%d HP).", actor.Name, healed, actor.Health),
			})
		case brawler.IDFrank:
			opponent.Stunned = true
			m.emit(Event{
				Kind:      EventStun,
				ActorID:   actor.ID,
				TargetID:  opponent.ID,
				Move:      MoveSuper,
				Narrative: fmt.Sprintf("%s is stunned.", opponent.Name),
			})
		}
	}

	if spawnHealth > 0 {
		actor.SpawnHealth = spawnHealth
		spawn := "spawn"
		if def.Super.Spawn != nil && def.Super.Spawn.Name != "" {
			spawn = def.Super.Spawn.Name
		}
		m.emit(Event{
			Kind:      EventSpawnSummoned,
			ActorID:   actor.ID,
			Move:      MoveSuper,
			Amount:    spawnHealth,
			Narrative: fmt.Sprintf("%s summoned %s with %d HP.", actor.Name, spawn, spawnHealth),
		})
	}
}

func (m *Match) attackSpawn(actor, opponent *Combatant) {
	actor.LastActionRound = m.Round
	dmg := actor.Boost(actor.Brawler.ResolveAttack(m.roller, actor.Level))
	actor.Streak++
	opponent.SpawnHealth -= dmg
	if opponent.SpawnHealth <= 0 {
		opponent.SpawnHealth = 0
		m.emit(Event{
			Kind:      EventSpawnDestroyed,
			ActorID:   actor.ID,
			TargetID:  opponent.ID,
			Move:      MoveAttackSpawn,
			Amount:    dmg,
			Narrative: fmt.Sprintf("%s destroyed %s's spawn.", actor.Name, opponent.Name),
		})
		return
	}
	m.emit(Event{
		Kind:      EventSpawnAttacked,
		ActorID:   actor.ID,
		TargetID:  opponent.ID,
		Move:      MoveAttackSpawn,
		Amount:    dmg,
		Narrative: fmt.Sprintf("%s hit %s's spawn for %d damage (%d HP left).", actor.Name, opponent.Name, dmg, opponent.SpawnHealth),
	})
}

// spawnAction lets owner's live spawn act with a 50% chance: a healing spawn
// heals owner, any other spawn damages target.
func (m *Match) spawnAction(owner, target *Combatant) {
	if !owner.HasSpawn() || owner.IsDefeated() || !m.roller.CoinFlip("spawn action") {
		return
	}
	eff := owner.Brawler.ResolveSpawnAction(m.roller, owner.Level)
	amount := owner.Boost(eff.Amount)
	if eff.Heal {
		healed := owner.Heal(amount)
		m.emit(Event{
			Kind:      EventSpawnAction,
			ActorID:   owner.ID,
			Amount:    healed,
			Narrative: fmt.Sprintf("%s's spawn healed %s for %d HP (%d HP).", owner.Name, owner.Name, healed, owner.Health),
		})
		return
	}
	if !m.hit(owner.ID, target, amount, MoveUnknown) {
		return
	}
	m.emit(Event{
		Kind:      EventSpawnAction,
		ActorID:   owner.ID,
		TargetID:  target.ID,
		Amount:    amount,
		Narrative: fmt.Sprintf("%s's spawn hit %s for %d damage (%d HP left).", owner.Name, target.Name, amount, target.Health),
	})
}

// handleDefeats runs the mode's defeat handling for every combatant whose
// health just reached zero.
func (m *Match) handleDefeats(cs ...*Combatant) {
	if m.Mode.onDefeat == nil {
		return
	}
	for _, c := range cs {
		if c.IsDefeated() && !c.Respawning {
			m.Mode.onDefeat(m, c)
		}
	}
}
