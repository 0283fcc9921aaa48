// Package combat implements the two-combatant duel engine: per-match combat
// state, the alternating turn state machine, move resolution, and the
// mode-specific objectives and win conditions.
package combat

import "github.com/cory-johannsen/brawl/internal/game/brawler"

// Rule constants shared by every mode.
const (
	// SuperStreak is the attack streak at which the super becomes available.
	SuperStreak = 6
	// PassiveHeal is healed at the start of a turn after PassiveHealIdle rounds without attacking.
	PassiveHeal     = 100
	PassiveHealIdle = 3
	// PowerUpHealth is added to static and current health per power-up.
	PowerUpHealth = 400
)

// Kind distinguishes live participants from the house opponent.
type Kind int

const (
	KindPlayer Kind = iota
	KindHouse
)

// Participant identifies one side of a match.
type Participant struct {
	ID   string
	Name string
	Kind Kind
}

// IsHouse reports whether the participant is the AI-controlled house.
func (p Participant) IsHouse() bool { return p.Kind == KindHouse }

// Combatant is the mutable per-match state of one participant. It is created
// when a match starts and discarded when it ends.
//
// Invariant: 0 <= Health <= StaticHealth after every mutation.
type Combatant struct {
	Participant
	Brawler *brawler.Definition
	Level   int

	Health       int
	StaticHealth int
	// Streak counts landed attacks since the last super.
	Streak     int
	Invincible bool
	Stunned    bool
	Respawning bool
	// SpawnHealth is the remaining health of the summoned unit; 0 means none.
	SpawnHealth int
	// LastActionRound is the round index of the last attack or super.
	LastActionRound int

	Gems     int
	Goals    int
	PowerUps int
}

// NewCombatant creates a combatant at full scaled health.
//
// Precondition: def must not be nil; level in [1, brawler.MaxLevel].
func NewCombatant(p Participant, def *brawler.Definition, level int) *Combatant {
	hp := def.ScaledHealth(level)
	return &Combatant{
		Participant:  p,
		Brawler:      def,
		Level:        level,
		Health:       hp,
		StaticHealth: hp,
	}
}

// ApplyDamage reduces Health by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: Health >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.Health -= amount
	c.clamp()
}

// Heal raises Health by amount, capped at StaticHealth, and returns the
// amount actually restored.
//
// Postcondition: Health <= StaticHealth.
func (c *Combatant) Heal(amount int) int {
	before := c.Health
	c.Health += amount
	c.clamp()
	return c.Health - before
}

// RestoreHealth sets Health to StaticHealth.
func (c *Combatant) RestoreHealth() {
	c.Health = c.StaticHealth
}

func (c *Combatant) clamp() {
	if c.Health < 0 {
		c.Health = 0
	}
	if c.Health > c.StaticHealth {
		c.Health = c.StaticHealth
	}
}

// IsDefeated reports whether Health has reached zero.
func (c *Combatant) IsDefeated() bool { return c.Health <= 0 }

// SuperReady reports whether the super is available this turn.
func (c *Combatant) SuperReady() bool { return c.Streak >= SuperStreak }

// HasSpawn reports whether the combatant's summoned unit is alive.
func (c *Combatant) HasSpawn() bool { return c.SpawnHealth > 0 }

// AddPowerUp grants one power-up: +PowerUpHealth to static and current health.
func (c *Combatant) AddPowerUp() {
	c.PowerUps++
	c.StaticHealth += PowerUpHealth
	c.Health += PowerUpHealth
	c.clamp()
}

// Boost scales an outgoing damage or heal amount by the power-up multiplier
// 1 + 0.1*(PowerUps-1); the first power-up grants no bonus.
func (c *Combatant) Boost(amount int) int {
	if c.PowerUps <= 1 {
		return amount
	}
	return int(float64(amount) * (1 + 0.1*float64(c.PowerUps-1)))
}

// Snapshot is a read-only copy of a combatant's visible state.
type Snapshot struct {
	ID           string
	Name         string
	BrawlerID    string
	BrawlerName  string
	Level        int
	Health       int
	StaticHealth int
	Streak       int
	Invincible   bool
	Stunned      bool
	Respawning   bool
	SpawnHealth  int
	Gems         int
	Goals        int
	PowerUps     int
}

// Snapshot returns a copy of the combatant's current state.
func (c *Combatant) Snapshot() Snapshot {
	return Snapshot{
		ID:           c.ID,
		Name:         c.Name,
		BrawlerID:    c.Brawler.ID,
		BrawlerName:  c.Brawler.Name,
		Level:        c.Level,
		Health:       c.Health,
		StaticHealth: c.StaticHealth,
		Streak:       c.Streak,
		Invincible:   c.Invincible,
		Stunned:      c.Stunned,
		Respawning:   c.Respawning,
		SpawnHealth:  c.SpawnHealth,
		Gems:         c.Gems,
		Goals:        c.Goals,
		PowerUps:     c.PowerUps,
	}
}
