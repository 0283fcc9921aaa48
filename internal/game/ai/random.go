// Package ai provides the house opponent's move choosers.
package ai

import (
	"context"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
)

// RandomChooser picks a uniformly random option and never blocks. It accepts
// every challenge.
type RandomChooser struct {
	roller *dice.Roller
}

// NewRandomChooser creates a RandomChooser drawing from r.
//
// Precondition: r must be non-nil.
func NewRandomChooser(r *dice.Roller) *RandomChooser {
	return &RandomChooser{roller: r}
}

var _ combat.Immediate = (*RandomChooser)(nil)

// Immediate implements combat.Immediate.
func (c *RandomChooser) Immediate() bool { return true }

// Choose implements combat.Chooser.
func (c *RandomChooser) Choose(_ context.Context, req combat.ChoiceRequest) combat.Reply {
	if req.Kind == combat.RequestChallenge || len(req.Options) == 0 {
		return combat.Choice(0)
	}
	return combat.Choice(c.roller.IntRange("house move", 0, len(req.Options)-1))
}
