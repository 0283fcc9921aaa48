package brawler

import "github.com/cory-johannsen/brawl/internal/game/dice"

// accuracy is the flat factor applied to every non-sniper raw value.
const accuracy = 0.8

// Effect is the outcome of an ability: an amount that either damages the
// target or, when Heal is set, heals the user.
type Effect struct {
	Amount int
	Heal   bool
}

// VarianceMultiplier maps a draw k in [0, 10] to the variance bucket:
// 1.0 for k >= 9, 0.7 for k >= 6, 0.5 for k >= 4, 0.3 for k >= 2, otherwise 0 (a miss).
func VarianceMultiplier(k int) float64 {
	switch {
	case k >= 9:
		return 1.0
	case k >= 6:
		return 0.7
	case k >= 4:
		return 0.5
	case k >= 2:
		return 0.3
	default:
		return 0
	}
}

// Variance draws k in [0, 10] and returns raw scaled by its bucket, floored.
//
// Postcondition: result is one of floor(raw * {0, 0.3, 0.5, 0.7, 1.0}).
func Variance(r *dice.Roller, raw float64) int {
	k := r.IntRange("variance", 0, 10)
	return int(raw * VarianceMultiplier(k))
}

// ResolveAttack computes the damage of one main attack at level.
//
// Postcondition: Returns >= 0.
func (d *Definition) ResolveAttack(r *dice.Roller, level int) int {
	dmg := float64(d.ScaledAttackDamage(level))
	projectiles := float64(d.Attack.Projectiles)
	switch d.Attack.Style {
	case StylePoison:
		ticks := r.Roll(d.Attack.poisonTicks()).Total()
		dmg += float64(d.Attack.PoisonDamage * ticks)
	case StyleLingering:
		dmg += dmg * 0.3
	case StyleRanged:
		dist := r.IntRange("sniper range", d.Attack.Range-4, d.Attack.Range)
		return Variance(r, dmg*projectiles*float64(dist)*0.1)
	}
	return Variance(r, dmg*projectiles*accuracy)
}

// ResolveSuper computes the super's effect at level and, for spawner
// archetypes, the health of the summoned unit (0 otherwise).
//
// Postcondition: Effect.Heal is set iff the archetype is healer or heal_spawner.
func (d *Definition) ResolveSuper(r *dice.Roller, level int) (Effect, int) {
	switch d.Archetype {
	case ArchetypeHealer:
		return Effect{Amount: Variance(r, float64(Scale(d.Super.Heal, level))*accuracy), Heal: true}, 0
	case ArchetypeSpawner:
		return Effect{Amount: Variance(r, float64(d.ScaledSpawnValue(level))*accuracy)}, d.ScaledSpawnHealth(level)
	case ArchetypeHealSpawner:
		return Effect{Amount: Variance(r, float64(d.ScaledSpawnValue(level))*accuracy), Heal: true}, d.ScaledSpawnHealth(level)
	default:
		raw := float64(Scale(d.Super.Damage, level)) * float64(d.Super.Projectiles) * accuracy
		return Effect{Amount: Variance(r, raw)}, 0
	}
}

// ResolveSpawnAction computes the summoned unit's own per-round action.
// Returns the zero Effect when the brawler does not spawn.
func (d *Definition) ResolveSpawnAction(r *dice.Roller, level int) Effect {
	s := d.Super.Spawn
	if s == nil {
		return Effect{}
	}
	return Effect{
		Amount: Variance(r, float64(d.ScaledSpawnValue(level))*accuracy),
		Heal:   s.Heal > 0,
	}
}
