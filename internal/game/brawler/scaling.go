package brawler

// Scale buffs value linearly by level: value + floor(value/20 * (level-1)).
// Level 10 scales as level 9; levels below 1 scale as level 1.
//
// Precondition: value >= 0.
// Postcondition: Scale is non-decreasing in level and Scale(v, 10) == Scale(v, 9).
func Scale(value, level int) int {
	if level > buffCapLevel {
		level = buffCapLevel
	}
	if level < 1 {
		level = 1
	}
	return value + value*(level-1)/20
}

// ScaledHealth returns the brawler's maximum health at level.
func (d *Definition) ScaledHealth(level int) int {
	return Scale(d.Health, level)
}

// ScaledAttackDamage returns the per-projectile attack damage at level.
func (d *Definition) ScaledAttackDamage(level int) int {
	return Scale(d.Attack.Damage, level)
}

// ScaledSuperValue returns the super's per-projectile damage, or its heal for
// the healer archetype, at level. Spawner archetypes report the spawn's value.
func (d *Definition) ScaledSuperValue(level int) int {
	switch d.Archetype {
	case ArchetypeHealer:
		return Scale(d.Super.Heal, level)
	case ArchetypeSpawner, ArchetypeHealSpawner:
		return d.ScaledSpawnValue(level)
	default:
		return Scale(d.Super.Damage, level)
	}
}

// ScaledSpawnValue returns the spawn's heal (heal spawns) or damage at level,
// or 0 when the brawler does not spawn.
func (d *Definition) ScaledSpawnValue(level int) int {
	s := d.Super.Spawn
	if s == nil {
		return 0
	}
	if s.Heal > 0 {
		return Scale(s.Heal, level)
	}
	return Scale(s.Damage, level)
}

// ScaledSpawnHealth returns the spawn's health at level, or 0 when the
// brawler does not spawn.
func (d *Definition) ScaledSpawnHealth(level int) int {
	if d.Super.Spawn == nil {
		return 0
	}
	return Scale(d.Super.Spawn.Health, level)
}
