package api

import (
	"encoding/json"
	"net/http"

	"github.com/voteguard/voteguard-node/ballot"
)

// castVote validates, encrypts and stores a vote, returning the verification
// code and the private ballot secret
// POST /votes
func (a *API) castVote(w http.ResponseWriter, r *http.Request) {
	req := &VoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if len(req.ElectionID) == 0 {
		ErrMalformedElectionID.Withf("electionId is required").Write(w)
		return
	}
	if req.VoterSecret == "" {
		ErrMalformedBody.Withf("voterSecret is required").Write(w)
		return
	}
	b, err := a.ballots.Cast(req.ElectionID, req.VoterSecret, req.SelectedCandidates)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, &VoteResponse{
		ElectionID:       b.ElectionID,
		VerificationCode: b.VerificationCode,
		BallotSecret:     b.BallotSecret,
		CiphertextHash:   b.CiphertextHash,
		CastAt:           b.CastAt,
	})
}

// verifyVote resolves a ballot by its private ballot secret, identity
// included
// POST /votes/verify
func (a *API) verifyVote(w http.ResponseWriter, r *http.Request) {
	req := &VerifyRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.BallotSecret == "" {
		ErrMalformedBody.Withf("ballotSecret is required").Write(w)
		return
	}
	vote, err := a.ballots.VerifyBySecret(req.BallotSecret)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, verifiedVoteResponse(vote))
}

// decodeVote resolves a ballot by its public verification code; the voter
// identity is only revealed when the matching ballot secret is supplied
// POST /votes/decode
func (a *API) decodeVote(w http.ResponseWriter, r *http.Request) {
	req := &DecodeRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.VerificationCode == "" {
		ErrMalformedBody.Withf("verificationCode is required").Write(w)
		return
	}
	vote, err := a.ballots.DecodeByCode(req.VerificationCode, req.BallotSecret)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, verifiedVoteResponse(vote))
}

func verifiedVoteResponse(vote *ballot.VerifiedVote) *VerifiedVoteResponse {
	return &VerifiedVoteResponse{
		ElectionID:         vote.Election.ID,
		ElectionName:       vote.Election.Name,
		VerificationCode:   vote.Ballot.VerificationCode,
		CiphertextHash:     vote.Ballot.CiphertextHash,
		CastAt:             vote.Ballot.CastAt,
		SelectedCandidates: vote.SelectedCandidates,
		VoterUID:           vote.VoterUID,
		VoterName:          vote.VoterName,
	}
}
