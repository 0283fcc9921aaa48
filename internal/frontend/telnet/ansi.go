// Package telnet serves duels over Telnet: line-oriented connection handling,
// ANSI styling and a Prompter that plays the engine's input and observer
// ports for one participant.
package telnet

import (
	"fmt"

	"github.com/cory-johannsen/brawl/internal/game/combat"
)

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// EventColor returns the color an event narrative is rendered in.
func EventColor(k combat.EventKind) string {
	switch k {
	case combat.EventAttack, combat.EventSpawnAttacked, combat.EventPoison:
		return Red
	case combat.EventHeal, combat.EventPassiveHeal, combat.EventRespawned:
		return Green
	case combat.EventSuper, combat.EventSpawnSummoned, combat.EventSpawnAction:
		return BrightYellow
	case combat.EventDodge, combat.EventInvisible, combat.EventNullified:
		return Cyan
	case combat.EventStun, combat.EventStunned:
		return Magenta
	case combat.EventObjective:
		return BrightCyan
	case combat.EventDefeated, combat.EventForfeit, combat.EventSpawnDestroyed:
		return BrightRed
	case combat.EventMatchStart, combat.EventMatchOver:
		return Bold + BrightWhite
	case combat.EventMiss:
		return Dim
	default:
		return White
	}
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
