package types

import "errors"

// Domain errors. They are recoverable at the caller boundary and map to a
// stable error taxonomy in the API layer.
var (
	ErrElectionNotFound  = errors.New("election not found")
	ErrVoterNotFound     = errors.New("voter not found")
	ErrBallotNotFound    = errors.New("ballot not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrAlreadyVoted      = errors.New("voter already cast a ballot in this election")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrInvalidParams     = errors.New("invalid parameters")
	ErrInvalidState      = errors.New("operation not allowed in current election status")
	ErrCeremonyFailure   = errors.New("key ceremony failure")
	ErrEncryptionFailure = errors.New("ballot encryption failure")
	ErrTallyFailure      = errors.New("tally failure")
)
