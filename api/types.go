package api

import (
	"time"

	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/types"
)

// ElectionRequest is the body for creating a new election.
type ElectionRequest struct {
	Name          string    `json:"name"`
	Candidates    []string  `json:"candidates"`
	MaxSelections int       `json:"maxSelections"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	NumGuardians  int       `json:"numGuardians,omitempty"`
	Quorum        int       `json:"quorum,omitempty"`
}

// ElectionList is a page of elections, newest first.
type ElectionList struct {
	Elections []*types.Election `json:"elections"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
	Total     int               `json:"total"`
}

// VoterRequest is the body for creating a voter.
type VoterRequest struct {
	Name string `json:"name"`
}

// VoterResponse carries the voter secret back to the caller. The secret is
// returned exactly once, at creation; it is never readable again through
// the API.
type VoterResponse struct {
	VoterUID  string    `json:"voterUid"`
	Name      string    `json:"name"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegistrationRequest is the body for registering a voter for an election.
type RegistrationRequest struct {
	VoterUID string `json:"voterUid"`
}

// VoteRequest is the body for casting a vote.
type VoteRequest struct {
	ElectionID         types.HexBytes `json:"electionId"`
	VoterSecret        string         `json:"voterSecret"`
	SelectedCandidates []uint32       `json:"selectedCandidateIds"`
}

// VoteResponse is returned after a successful cast. The ballot secret, like
// the voter secret, is only ever shown here.
type VoteResponse struct {
	ElectionID       types.HexBytes `json:"electionId"`
	VerificationCode string         `json:"verificationCode"`
	BallotSecret     string         `json:"ballotSecret"`
	CiphertextHash   types.HexBytes `json:"ciphertextHash"`
	CastAt           time.Time      `json:"castAt"`
}

// VerifyRequest is the body for verifying a vote by its ballot secret.
type VerifyRequest struct {
	BallotSecret string `json:"ballotSecret"`
}

// DecodeRequest is the body for decoding a vote by its public verification
// code, optionally proving ownership with the ballot secret.
type DecodeRequest struct {
	VerificationCode string `json:"verificationCode"`
	BallotSecret     string `json:"ballotSecret,omitempty"`
}

// VerifiedVoteResponse is the result of a verify or decode lookup. The voter
// identity fields are only present when the caller proved ownership.
type VerifiedVoteResponse struct {
	ElectionID         types.HexBytes    `json:"electionId"`
	ElectionName       string            `json:"electionName"`
	VerificationCode   string            `json:"verificationCode"`
	CiphertextHash     types.HexBytes    `json:"ciphertextHash"`
	CastAt             time.Time         `json:"castAt"`
	SelectedCandidates []types.Candidate `json:"selectedCandidates,omitempty"`
	VoterUID           string            `json:"voterUid,omitempty"`
	VoterName          string            `json:"voterName,omitempty"`
}

// BallotList is the admin view of the ballots cast in an election.
type BallotList struct {
	Ballots []*types.Ballot `json:"ballots"`
	Total   int             `json:"total"`
}

// RegistrationList lists the registrants of an election.
type RegistrationList struct {
	Registrations []*types.Registration `json:"registrations"`
	Total         int                   `json:"total"`
}

// LogList is a slice of recent log entries, oldest first.
type LogList struct {
	Entries []log.Entry `json:"entries"`
	Total   int         `json:"total"`
}
