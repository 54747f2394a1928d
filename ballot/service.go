package ballot

import (
	"errors"
	"fmt"
	"time"

	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/election"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/storage"
	"github.com/voteguard/voteguard-node/types"
	"github.com/voteguard/voteguard-node/util"
)

// ballotSecretLen is the byte length of generated ballot secrets.
const ballotSecretLen = 16

// Service drives vote submission and the read-only verification operations.
type Service struct {
	stg *storage.Storage
	eng engine.Engine
}

// NewService creates a new ballot service.
func NewService(stg *storage.Storage, eng engine.Engine) *Service {
	return &Service{stg: stg, eng: eng}
}

// Cast validates, encrypts and persists a vote. The voter authenticates with
// their voter secret; the created ballot is returned with its ballot secret,
// which is shown to the voter exactly once.
func (s *Service) Cast(electionID types.HexBytes, voterSecret string, selected []uint32) (*types.Ballot, error) {
	voter, err := s.stg.VoterBySecret(voterSecret)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrVoterNotFound
		}
		return nil, err
	}
	elec, err := s.stg.Election(electionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrElectionNotFound
		}
		return nil, err
	}
	if err := election.CanVote(elec); err != nil {
		return nil, err
	}
	if !s.stg.IsRegistered(electionID, voter.UID) {
		return nil, fmt.Errorf("%w: voter not registered for this election", types.ErrVoterNotFound)
	}
	// cheap pre-check so an obvious duplicate skips the encryption work; the
	// authoritative uniqueness check happens atomically at commit
	if s.stg.HasBallot(electionID, voter.UID) {
		return nil, types.ErrAlreadyVoted
	}

	ctx, err := election.ContextFromElection(elec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncryptionFailure, err)
	}
	sel, err := Encrypt(s.eng, ctx, elec, selected)
	if err != nil {
		return nil, err
	}
	ciphertext, err := election.EncodePayload(sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncryptionFailure, err)
	}

	ballot := &types.Ballot{
		ElectionID:         electionID,
		VoterUID:           voter.UID,
		BallotSecret:       util.RandomHex(ballotSecretLen),
		Ciphertext:         ciphertext,
		CiphertextHash:     types.HexBytes(sel.Hash),
		VerificationCode:   VerificationCode(sel.Hash),
		SelectedCandidates: append([]uint32{}, selected...),
		CastAt:             time.Now().UTC(),
	}
	if err := s.stg.NewBallot(ballot); err != nil {
		if errors.Is(err, storage.ErrBallotExists) {
			return nil, types.ErrAlreadyVoted
		}
		if errors.Is(err, storage.ErrElectionNotOpen) {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidState, err)
		}
		return nil, err
	}
	log.Infow("ballot cast", "election", electionID.String(), "code", ballot.VerificationCode)
	return ballot, nil
}

// VerifiedVote is the result of a verification lookup.
type VerifiedVote struct {
	Election           *types.Election
	Ballot             *types.Ballot
	SelectedCandidates []types.Candidate
	// VoterUID is populated only when the caller proved ownership.
	VoterUID string
	// VoterName is populated only when the caller proved ownership.
	VoterName string
}

// VerifyBySecret resolves a ballot by its private ballot secret and returns
// the full vote record, identity included: holding the secret is proof of
// ownership.
func (s *Service) VerifyBySecret(ballotSecret string) (*VerifiedVote, error) {
	ballot, err := s.stg.BallotBySecret(ballotSecret)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrBallotNotFound
		}
		return nil, err
	}
	return s.buildVerifiedVote(ballot, true)
}

// DecodeByCode resolves a ballot by its public verification code. Without a
// ballot secret the result never carries voter identity. When a secret is
// supplied it must match the resolved ballot exactly: on match the identity
// fields are populated, on mismatch the lookup fails with InvalidSelection
// and never falls back to the anonymous tier.
func (s *Service) DecodeByCode(code, ballotSecret string) (*VerifiedVote, error) {
	ballot, err := s.stg.BallotByCode(code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrBallotNotFound
		}
		return nil, err
	}
	if ballotSecret == "" {
		return s.buildVerifiedVote(ballot, false)
	}
	if ballot.BallotSecret != ballotSecret {
		return nil, fmt.Errorf("%w: ballot secret does not match", types.ErrInvalidSelection)
	}
	return s.buildVerifiedVote(ballot, true)
}

func (s *Service) buildVerifiedVote(ballot *types.Ballot, withIdentity bool) (*VerifiedVote, error) {
	elec, err := s.stg.Election(ballot.ElectionID)
	if err != nil {
		return nil, err
	}
	selected := make([]types.Candidate, 0, len(ballot.SelectedCandidates))
	for _, idx := range ballot.SelectedCandidates {
		if cand := elec.CandidateByIndex(idx); cand != nil {
			selected = append(selected, *cand)
		}
	}
	vote := &VerifiedVote{
		Election:           elec,
		Ballot:             ballot,
		SelectedCandidates: selected,
	}
	if withIdentity {
		vote.VoterUID = ballot.VoterUID
		if voter, err := s.stg.Voter(ballot.VoterUID); err == nil {
			vote.VoterName = voter.Name
		}
	}
	return vote, nil
}

// Ballots lists all ballots cast in an election.
func (s *Service) Ballots(electionID types.HexBytes) ([]*types.Ballot, error) {
	if _, err := s.stg.Election(electionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrElectionNotFound
		}
		return nil, err
	}
	return s.stg.ListBallots(electionID)
}
