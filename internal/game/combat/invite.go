package combat

import (
	"context"
	"fmt"
	"time"
)

// Challenge prompt options. Index 0 accepts.
var challengeOptions = []string{"Accept", "Decline"}

// Invite asks invitee to accept a duel through ch. House invitees always accept.
//
// Postcondition: returns nil on acceptance; otherwise an error wrapping
// ErrChallengeRejected, ErrChallengeTimeout or ErrDeliveryFailure.
func Invite(ctx context.Context, ch Chooser, invitee Participant, mode ModeTag, timeout time.Duration) error {
	if invitee.IsHouse() {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultChoiceTimeout
	}
	req := ChoiceRequest{
		Kind:        RequestChallenge,
		Participant: invitee,
		Mode:        mode,
		Options:     challengeOptions,
	}
	reply := boundedChoose(ctx, ch, req, timeout)
	switch reply.Kind {
	case ReplyChoice:
		if reply.Index == 0 {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrChallengeRejected, invitee.ID)
	case ReplyRejected:
		return fmt.Errorf("%w: %s", ErrChallengeRejected, invitee.ID)
	case ReplyTimeout:
		return fmt.Errorf("%w: %s", ErrChallengeTimeout, invitee.ID)
	default:
		return fmt.Errorf("%w: %s", ErrDeliveryFailure, invitee.ID)
	}
}
