package combat

import (
	"fmt"
	"sort"
)

// ModeTag names a game mode.
type ModeTag string

const (
	ModeGemGrab   ModeTag = "gemgrab"
	ModeShowdown  ModeTag = "showdown"
	ModeBrawlBall ModeTag = "brawlball"
)

// Decision is a mode's verdict on the current match state.
// Over with a nil Winner is a draw.
type Decision struct {
	Over   bool
	Winner *Combatant
}

// Mode is the policy bundle that distinguishes one game mode from another.
// The turn state machine in Match is shared; only these hooks vary.
type Mode struct {
	Tag  ModeTag
	Name string
	// RoundLimit is the even number of half-rounds after which the match is a draw.
	RoundLimit int
	// Objective labels the objective move in choice prompts.
	Objective string

	// beforeTurn runs once per round index before the acting combatant's turn.
	beforeTurn func(m *Match)
	objective  func(m *Match, actor, opponent *Combatant)
	// onDefeat runs once when a combatant's health first reaches zero.
	onDefeat func(m *Match, c *Combatant)
	decide   func(m *Match) Decision
}

var modes = map[ModeTag]*Mode{
	ModeGemGrab:   gemGrab,
	ModeShowdown:  showdown,
	ModeBrawlBall: brawlBall,
}

// ModeByTag returns the mode policy for tag.
//
// Postcondition: returns a non-nil Mode or an error wrapping ErrUnknownMode.
func ModeByTag(tag ModeTag) (*Mode, error) {
	m, ok := modes[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, tag)
	}
	return m, nil
}

// ModeTags returns every known mode tag in sorted order.
func ModeTags() []ModeTag {
	tags := make([]ModeTag, 0, len(modes))
	for t := range modes {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// respawn marks c as respawning; its next turn is skipped and restores health.
func respawn(m *Match, c *Combatant) {
	c.Respawning = true
	m.emit(Event{
		Kind:      EventDefeated,
		ActorID:   c.ID,
		Narrative: fmt.Sprintf("%s was defeated and will respawn.", c.Name),
	})
}
