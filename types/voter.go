package types

import "time"

// Voter is a globally registered voter, independent of any election. The UID
// and Secret are both globally unique and never mutated after creation.
type Voter struct {
	UID       string    `json:"voterUid" cbor:"uid"`
	Name      string    `json:"name" cbor:"name"`
	Secret    string    `json:"-" cbor:"secret"`
	CreatedAt time.Time `json:"createdAt" cbor:"createdAt"`
}

// Registration links a voter to an election. At most one registration exists
// per (election, voter) pair, and a vote is only accepted if one exists.
type Registration struct {
	ElectionID HexBytes  `json:"electionId" cbor:"electionId"`
	VoterUID   string    `json:"voterUid" cbor:"voterUid"`
	CreatedAt  time.Time `json:"createdAt" cbor:"createdAt"`
}

// Ballot is a voter's immutable encrypted record of selections for one
// election. At most one ballot exists per (election, voter) pair.
type Ballot struct {
	ElectionID         HexBytes      `json:"electionId" cbor:"electionId"`
	VoterUID           string        `json:"voterUid,omitempty" cbor:"voterUid"`
	BallotSecret       string        `json:"-" cbor:"ballotSecret"`
	Ciphertext         CryptoPayload `json:"-" cbor:"ciphertext"`
	CiphertextHash     HexBytes      `json:"ciphertextHash" cbor:"ciphertextHash"`
	VerificationCode   string        `json:"verificationCode" cbor:"verificationCode"`
	SelectedCandidates []uint32      `json:"selectedCandidates" cbor:"selectedCandidates"`
	CastAt             time.Time     `json:"castAt" cbor:"castAt"`
}
