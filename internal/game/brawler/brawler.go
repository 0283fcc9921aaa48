// Package brawler holds the immutable Brawler roster and the pure stat and
// ability computations the combat engine resolves moves with.
package brawler

import (
	"fmt"

	"github.com/cory-johannsen/brawl/internal/game/dice"
)

// MaxLevel is the highest brawler level. Level 10 unlocks star powers only;
// numeric scaling stops at buffCapLevel.
const MaxLevel = 10

const buffCapLevel = 9

// Identifiers of brawlers whose super follows an explicit special rule.
const (
	// IDMortis's super damages the opponent and heals Mortis by the same amount.
	IDMortis = "mortis"
	// IDFrank's super damages and stuns the opponent.
	IDFrank = "frank"
	// IDLeon's super turns Leon invisible: invincible for the next hit, no damage.
	IDLeon = "leon"
)

// Archetype selects how a brawler's super is computed.
type Archetype string

const (
	ArchetypePlain       Archetype = "plain"
	ArchetypeHealer      Archetype = "healer"
	ArchetypeSpawner     Archetype = "spawner"
	ArchetypeHealSpawner Archetype = "heal_spawner"
)

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	switch a {
	case ArchetypePlain, ArchetypeHealer, ArchetypeSpawner, ArchetypeHealSpawner:
		return true
	}
	return false
}

// AttackStyle selects how a brawler's main attack is computed.
type AttackStyle string

const (
	StyleStandard  AttackStyle = "standard"
	StylePoison    AttackStyle = "poison"
	StyleLingering AttackStyle = "lingering"
	StyleRanged    AttackStyle = "ranged"
)

// Valid reports whether s is a known attack style. The empty style is standard.
func (s AttackStyle) Valid() bool {
	switch s {
	case "", StyleStandard, StylePoison, StyleLingering, StyleRanged:
		return true
	}
	return false
}

var defaultPoisonTicks = dice.MustParse("1d3")

// Attack is the main attack block. Reload is informational.
type Attack struct {
	Damage       int         `yaml:"damage"`
	Projectiles  int         `yaml:"projectiles"`
	Range        int         `yaml:"range"`
	Reload       float64     `yaml:"reload"`
	Style        AttackStyle `yaml:"style"`
	PoisonDamage int         `yaml:"poison_damage"`
	// PoisonTicks is a dice expression for the number of poison ticks; empty means "1d3".
	PoisonTicks string `yaml:"poison_ticks"`
}

func (a Attack) poisonTicks() dice.Expression {
	if a.PoisonTicks == "" {
		return defaultPoisonTicks
	}
	e, err := dice.Parse(a.PoisonTicks)
	if err != nil {
		return defaultPoisonTicks
	}
	return e
}

// Spawn describes the unit a spawner super summons. A spawn either heals its
// owner (Heal > 0) or damages the owner's opponent.
type Spawn struct {
	Name   string `yaml:"name"`
	Damage int    `yaml:"damage"`
	Heal   int    `yaml:"heal"`
	Health int    `yaml:"health"`
}

// Super is the special ability block.
type Super struct {
	Name        string `yaml:"name"`
	Damage      int    `yaml:"damage"`
	Heal        int    `yaml:"heal"`
	Projectiles int    `yaml:"projectiles"`
	Spawn       *Spawn `yaml:"spawn"`
}

// StarPower is flavour unlocked at MaxLevel; it never changes resolution.
type StarPower struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Definition is one brawler as loaded from the roster. It is never mutated
// after loading and may be shared between concurrent matches.
type Definition struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Health      int         `yaml:"health"`
	Archetype   Archetype   `yaml:"archetype"`
	Attack      Attack      `yaml:"attack"`
	Super       Super       `yaml:"super"`
	StarPowers  []StarPower `yaml:"star_powers"`
}

// Validate checks the definition invariants, including that the archetype's
// data is present.
//
// Postcondition: Returns nil iff the definition can be resolved by every operation.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("brawler: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("brawler %q: name must not be empty", d.ID)
	}
	if d.Health < 1 {
		return fmt.Errorf("brawler %q: health must be >= 1", d.ID)
	}
	if d.Attack.Damage < 0 {
		return fmt.Errorf("brawler %q: attack.damage must be >= 0", d.ID)
	}
	if d.Attack.Projectiles < 1 {
		return fmt.Errorf("brawler %q: attack.projectiles must be >= 1", d.ID)
	}
	if !d.Attack.Style.Valid() {
		return fmt.Errorf("brawler %q: unknown attack.style %q", d.ID, d.Attack.Style)
	}
	switch d.Attack.Style {
	case StylePoison:
		if d.Attack.PoisonDamage < 1 {
			return fmt.Errorf("brawler %q: poison style requires attack.poison_damage >= 1", d.ID)
		}
		if d.Attack.PoisonTicks != "" {
			if _, err := dice.Parse(d.Attack.PoisonTicks); err != nil {
				return fmt.Errorf("brawler %q: attack.poison_ticks: %w", d.ID, err)
			}
		}
	case StyleRanged:
		if d.Attack.Range < 4 {
			return fmt.Errorf("brawler %q: ranged style requires attack.range >= 4", d.ID)
		}
	}
	if !d.Archetype.Valid() {
		return fmt.Errorf("brawler %q: unknown archetype %q", d.ID, d.Archetype)
	}
	switch d.Archetype {
	case ArchetypePlain:
		if d.Super.Projectiles < 1 {
			return fmt.Errorf("brawler %q: plain archetype requires super.projectiles >= 1", d.ID)
		}
	case ArchetypeHealer:
		if d.Super.Heal < 1 {
			return fmt.Errorf("brawler %q: healer archetype requires super.heal >= 1", d.ID)
		}
	case ArchetypeSpawner:
		if d.Super.Spawn == nil || d.Super.Spawn.Damage < 1 || d.Super.Spawn.Health < 1 {
			return fmt.Errorf("brawler %q: spawner archetype requires super.spawn damage and health >= 1", d.ID)
		}
	case ArchetypeHealSpawner:
		if d.Super.Spawn == nil || d.Super.Spawn.Heal < 1 || d.Super.Spawn.Health < 1 {
			return fmt.Errorf("brawler %q: heal_spawner archetype requires super.spawn heal and health >= 1", d.ID)
		}
	}
	if len(d.StarPowers) != 2 {
		return fmt.Errorf("brawler %q: exactly 2 star_powers required, got %d", d.ID, len(d.StarPowers))
	}
	return nil
}

// HasSpawn reports whether the super summons a unit.
func (d *Definition) HasSpawn() bool {
	return d.Archetype == ArchetypeSpawner || d.Archetype == ArchetypeHealSpawner
}

// ValidLevel reports whether level is in [1, MaxLevel].
func ValidLevel(level int) bool {
	return level >= 1 && level <= MaxLevel
}
