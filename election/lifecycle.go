package election

import (
	"fmt"

	"github.com/voteguard/voteguard-node/types"
)

// Lifecycle gates. The status machine only moves forward:
// Created -> VotingOpen -> Tallying -> Closed. Elections are created already
// in VotingOpen with their cryptographic material attached, so Created is
// never observable from outside.

// CanVote returns nil if the election accepts ballots.
func CanVote(e *types.Election) error {
	if e.Status != types.ElectionStatusVotingOpen {
		return fmt.Errorf("%w: cannot vote while election is %s", types.ErrInvalidState, e.Status)
	}
	return nil
}

// CanClose returns nil if voting can be ended. Closing is legal only from
// VotingOpen; re-closing a closed election is rejected, not ignored.
func CanClose(e *types.Election) error {
	if e.Status != types.ElectionStatusVotingOpen {
		return fmt.Errorf("%w: cannot close election while it is %s", types.ErrInvalidState, e.Status)
	}
	return nil
}

// CanTally returns nil if the tally may run: either voting is still open (the
// tally closes the election itself) or the election was closed without a
// tally yet. A second tally on an already tallied election is rejected.
func CanTally(e *types.Election) error {
	switch e.Status {
	case types.ElectionStatusVotingOpen:
		return nil
	case types.ElectionStatusClosed:
		if e.Tallied {
			return fmt.Errorf("%w: election already tallied", types.ErrInvalidState)
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot tally election while it is %s", types.ErrInvalidState, e.Status)
	}
}
