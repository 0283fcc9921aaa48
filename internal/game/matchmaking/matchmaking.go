// Package matchmaking builds the participants of a duel: it reads a player's
// loadout through the stat accessor and generates a house opponent when no
// live second participant is supplied.
package matchmaking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
)

// HouseID is the participant identity of the house opponent.
const HouseID = "house"

// Loadout is a participant's selected brawler, its level and preferred mode.
type Loadout struct {
	BrawlerID string
	Level     int
	Mode      combat.ModeTag
}

// ReadLoadout reads the selected brawler, its level and the selected game mode
// for identity through stats.
//
// Postcondition: on success the level is in [1, brawler.MaxLevel] and the mode is known.
func ReadLoadout(ctx context.Context, stats combat.StatAccessor, identity string) (Loadout, error) {
	id, err := stats.Get(ctx, identity, combat.FieldSelectedBrawler)
	if err != nil {
		return Loadout{}, fmt.Errorf("reading selected brawler for %s: %w", identity, err)
	}
	raw, err := stats.Get(ctx, identity, combat.FieldBrawlers, id)
	if err != nil {
		return Loadout{}, fmt.Errorf("reading level of %s for %s: %w", id, identity, err)
	}
	level, err := strconv.Atoi(raw)
	if err != nil || !brawler.ValidLevel(level) {
		return Loadout{}, fmt.Errorf("%w: %q for %s", combat.ErrInvalidLevel, raw, identity)
	}
	mode, err := stats.Get(ctx, identity, combat.FieldSelectedGameMode)
	if err != nil {
		return Loadout{}, fmt.Errorf("reading selected mode for %s: %w", identity, err)
	}
	if _, err := combat.ModeByTag(combat.ModeTag(mode)); err != nil {
		return Loadout{}, err
	}
	return Loadout{BrawlerID: id, Level: level, Mode: combat.ModeTag(mode)}, nil
}

// HouseOpponent is a generated house loadout. StarPower is the unlocked
// star-power slot (1 or 2) when the level roll overflowed the cap, else 0.
// It is flavour only.
type HouseOpponent struct {
	Brawler   *brawler.Definition
	Level     int
	StarPower int
}

// PickHouseOpponent selects a uniformly random brawler from reg and a level of
// ownLevel-1, ownLevel or ownLevel+1 clamped to [1, brawler.MaxLevel].
//
// Precondition: reg holds at least one brawler.
// Postcondition: Level is in [1, brawler.MaxLevel]; StarPower is non-zero
// only if the unclamped roll exceeded brawler.MaxLevel.
func PickHouseOpponent(reg *brawler.Registry, r *dice.Roller, ownLevel int) (HouseOpponent, error) {
	ids := reg.IDs()
	if len(ids) == 0 {
		return HouseOpponent{}, fmt.Errorf("matchmaking: empty roster")
	}
	def, err := reg.Get(ids[r.IntRange("house brawler", 0, len(ids)-1)])
	if err != nil {
		return HouseOpponent{}, err
	}
	opp := HouseOpponent{Brawler: def}
	level := ownLevel + r.IntRange("house level offset", -1, 1)
	switch {
	case level > brawler.MaxLevel:
		opp.Level = brawler.MaxLevel
		opp.StarPower = r.IntRange("house star power", 1, 2)
	case level < 1:
		opp.Level = 1
	default:
		opp.Level = level
	}
	return opp, nil
}

// StarPowerName returns the unlocked star power's name, or "" when none.
func (h HouseOpponent) StarPowerName() string {
	if h.StarPower < 1 || h.StarPower > len(h.Brawler.StarPowers) {
		return ""
	}
	return h.Brawler.StarPowers[h.StarPower-1].Name
}

// Participant returns the house participant identity for this opponent.
func (h HouseOpponent) Participant() combat.Participant {
	return combat.Participant{
		ID:   HouseID,
		Name: "House " + h.Brawler.Name,
		Kind: combat.KindHouse,
	}
}

// Entrant builds the combat entrant for this opponent driven by ch.
func (h HouseOpponent) Entrant(ch combat.Chooser) combat.Entrant {
	return combat.Entrant{
		Participant: h.Participant(),
		BrawlerID:   h.Brawler.ID,
		Level:       h.Level,
		Chooser:     ch,
	}
}
