package types

import (
	"bytes"
	"fmt"
	"time"
)

// ElectionStatus represents the lifecycle status of an election. It only ever
// advances forward: Created -> VotingOpen -> Tallying -> Closed.
type ElectionStatus uint8

const (
	ElectionStatusCreated ElectionStatus = iota
	ElectionStatusVotingOpen
	ElectionStatusTallying
	ElectionStatusClosed
)

const (
	ElectionStatusNameCreated    = "created"
	ElectionStatusNameVotingOpen = "voting_open"
	ElectionStatusNameTallying   = "tallying"
	ElectionStatusNameClosed     = "closed"
)

var electionStatusNames = map[ElectionStatus]string{
	ElectionStatusCreated:    ElectionStatusNameCreated,
	ElectionStatusVotingOpen: ElectionStatusNameVotingOpen,
	ElectionStatusTallying:   ElectionStatusNameTallying,
	ElectionStatusClosed:     ElectionStatusNameClosed,
}

func (s ElectionStatus) String() string {
	if name, ok := electionStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// MarshalJSON encodes the status as its string name.
func (s ElectionStatus) MarshalJSON() ([]byte, error) {
	name, ok := electionStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown election status %d", uint8(s))
	}
	return fmt.Appendf(nil, "%q", name), nil
}

// UnmarshalJSON decodes a status from its string name.
func (s *ElectionStatus) UnmarshalJSON(data []byte) error {
	name := string(bytes.Trim(data, `"`))
	for status, statusName := range electionStatusNames {
		if statusName == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown election status %q", name)
}

// CryptoPayload is a versioned envelope for opaque serialized cryptographic
// material (manifest, context, keys, ciphertexts). The version field guards
// against silently decoding material written in an older format.
type CryptoPayload struct {
	Version uint8    `json:"version" cbor:"version"`
	Data    HexBytes `json:"data" cbor:"data"`
}

// IsZero reports whether the payload carries no data.
func (p CryptoPayload) IsZero() bool {
	return len(p.Data) == 0
}

// Candidate is one selectable option inside an election. VoteCount and
// VotePercentage stay at zero until the tally commits results.
type Candidate struct {
	Index          uint32  `json:"index" cbor:"index"`
	Name           string  `json:"name" cbor:"name"`
	VoteCount      uint64  `json:"voteCount" cbor:"voteCount"`
	VotePercentage float64 `json:"votePercentage" cbor:"votePercentage"`
}

// Election is the aggregate root for one verifiable election. Manifest,
// Context, JointPublicKey and GuardianKeys are written exactly once at
// creation and are immutable thereafter.
type Election struct {
	ID            HexBytes       `json:"electionId" cbor:"id"`
	Name          string         `json:"name" cbor:"name"`
	Status        ElectionStatus `json:"status" cbor:"status"`
	MaxSelections int            `json:"maxSelections" cbor:"maxSelections"`
	Candidates    []Candidate    `json:"candidates" cbor:"candidates"`
	NumGuardians  int            `json:"numGuardians" cbor:"numGuardians"`
	Quorum        int            `json:"quorum" cbor:"quorum"`

	StartDate time.Time  `json:"startDate" cbor:"startDate"`
	EndDate   time.Time  `json:"endDate" cbor:"endDate"`
	CreatedAt time.Time  `json:"createdAt" cbor:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty" cbor:"closedAt,omitempty"`

	Manifest       CryptoPayload `json:"-" cbor:"manifest"`
	Context        CryptoPayload `json:"-" cbor:"context"`
	JointPublicKey HexBytes      `json:"jointPublicKey" cbor:"jointPublicKey"`
	GuardianKeys   CryptoPayload `json:"-" cbor:"guardianKeys"`

	TotalVotes     uint64        `json:"totalVotes" cbor:"totalVotes"`
	EncryptedTally CryptoPayload `json:"-" cbor:"encryptedTally"`
	Tallied        bool          `json:"tallied" cbor:"tallied"`
}

// CandidateByIndex returns the candidate with the given index, or nil.
func (e *Election) CandidateByIndex(index uint32) *Candidate {
	for i := range e.Candidates {
		if e.Candidates[i].Index == index {
			return &e.Candidates[i]
		}
	}
	return nil
}
