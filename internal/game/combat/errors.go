package combat

import (
	"errors"

	"github.com/cory-johannsen/brawl/internal/game/brawler"
)

var (
	// ErrChallengeRejected is returned by Invite when the invitee declines.
	ErrChallengeRejected = errors.New("challenge rejected")
	// ErrChallengeTimeout is returned by Invite when the invitee does not answer in time.
	ErrChallengeTimeout = errors.New("challenge timed out")
	// ErrDeliveryFailure reports that a participant could not be reached.
	ErrDeliveryFailure = errors.New("delivery failure")
	// ErrUnknownMode is returned for a mode tag that is not gemgrab, showdown or brawlball.
	ErrUnknownMode = errors.New("unknown game mode")
	// ErrInvalidLevel is returned for a level outside [1, brawler.MaxLevel].
	ErrInvalidLevel = errors.New("invalid brawler level")
	// ErrAlreadyInMatch is returned when a participant is already admitted to another match.
	ErrAlreadyInMatch = errors.New("participant already in a match")
	// ErrUnknownBrawler re-exports brawler.ErrUnknownBrawler for callers of NewMatch.
	ErrUnknownBrawler = brawler.ErrUnknownBrawler
)
