package election

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/storage"
	"github.com/voteguard/voteguard-node/types"
	"github.com/voteguard/voteguard-node/util"
)

// voterSecretLen is the byte length of generated voter and ballot secrets.
const voterSecretLen = 16

// Service orchestrates election creation, voter registration and the
// lifecycle transitions. Ballot casting and tallying live in their own
// packages; this service owns everything an election needs before the first
// vote arrives.
type Service struct {
	stg *storage.Storage
	eng engine.Engine
}

// NewService creates a new election service.
func NewService(stg *storage.Storage, eng engine.Engine) *Service {
	return &Service{stg: stg, eng: eng}
}

// Storage exposes the underlying storage for the ballot and tally packages.
func (s *Service) Storage() *storage.Storage {
	return s.stg
}

// Engine exposes the cryptographic engine in use.
func (s *Service) Engine() engine.Engine {
	return s.eng
}

// CreateParams is the configuration for a new election.
type CreateParams struct {
	Name           string
	CandidateNames []string
	MaxSelections  int
	StartDate      time.Time
	EndDate        time.Time
	NumGuardians   int
	Quorum         int
}

// CreateElection builds the manifest, runs the key ceremony and persists the
// new election already open for voting. The manifest and context are written
// exactly once here and never change afterwards.
func (s *Service) CreateElection(params CreateParams) (*types.Election, error) {
	if params.NumGuardians == 0 {
		params.NumGuardians = 1
	}
	if params.Quorum == 0 {
		params.Quorum = params.NumGuardians
	}
	if params.NumGuardians < 1 || params.Quorum < 1 || params.Quorum > params.NumGuardians {
		return nil, fmt.Errorf("%w: need guardians >= quorum >= 1, got %d guardians with quorum %d",
			types.ErrInvalidParams, params.NumGuardians, params.Quorum)
	}

	id := uuid.New()
	electionID := types.HexBytes(id[:])

	manifest, err := BuildManifest(electionID, params.Name, params.CandidateNames,
		params.MaxSelections, params.StartDate, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidParams, err)
	}
	ceremony, err := RunCeremony(s.eng, manifest, params.NumGuardians, params.Quorum)
	if err != nil {
		return nil, err
	}
	serializedManifest, err := manifest.Serialize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCeremonyFailure, err)
	}

	candidates := make([]types.Candidate, len(params.CandidateNames))
	for i, cn := range params.CandidateNames {
		candidates[i] = types.Candidate{Index: uint32(i), Name: cn}
	}
	now := time.Now().UTC()
	elec := &types.Election{
		ID:             electionID,
		Name:           params.Name,
		Status:         types.ElectionStatusVotingOpen,
		MaxSelections:  params.MaxSelections,
		Candidates:     candidates,
		NumGuardians:   params.NumGuardians,
		Quorum:         params.Quorum,
		StartDate:      params.StartDate.UTC(),
		EndDate:        params.EndDate.UTC(),
		CreatedAt:      now,
		Manifest:       types.CryptoPayload{Version: payloadVersion, Data: serializedManifest},
		Context:        ceremony.Context,
		JointPublicKey: ceremony.JointPublicKey,
		GuardianKeys:   ceremony.GuardianKeys,
	}
	if err := s.stg.NewElection(elec); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			return nil, types.ErrAlreadyExists
		}
		return nil, err
	}
	log.Infow("election created", "id", elec.ID.String(), "name", elec.Name,
		"candidates", len(candidates), "guardians", params.NumGuardians, "quorum", params.Quorum)
	return elec, nil
}

// Election retrieves an election by ID.
func (s *Service) Election(id types.HexBytes) (*types.Election, error) {
	elec, err := s.stg.Election(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrElectionNotFound
		}
		return nil, err
	}
	return elec, nil
}

// ListElections retrieves all elections sorted newest-first.
func (s *Service) ListElections() ([]*types.Election, error) {
	ids, err := s.stg.ListElections()
	if err != nil {
		return nil, err
	}
	elections := make([]*types.Election, 0, len(ids))
	for _, id := range ids {
		elec, err := s.stg.Election(id)
		if err != nil {
			return nil, err
		}
		elections = append(elections, elec)
	}
	sort.Slice(elections, func(i, j int) bool {
		return elections[i].CreatedAt.After(elections[j].CreatedAt)
	})
	return elections, nil
}

// CloseVoting ends the voting phase. Legal only while voting is open; it does
// not compute results.
func (s *Service) CloseVoting(id types.HexBytes) (*types.Election, error) {
	err := s.stg.UpdateElection(id, func(e *types.Election) error {
		if err := CanClose(e); err != nil {
			return err
		}
		return storage.CloseElection(time.Now().UTC())(e)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrElectionNotFound
		}
		return nil, err
	}
	log.Infow("voting closed", "id", id.String())
	return s.Election(id)
}

// CreateVoter registers a new global voter with a fresh UID and secret.
func (s *Service) CreateVoter(name string) (*types.Voter, error) {
	voter := &types.Voter{
		UID:       uuid.NewString(),
		Name:      name,
		Secret:    util.RandomHex(voterSecretLen),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.stg.NewVoter(voter); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			return nil, types.ErrAlreadyExists
		}
		return nil, err
	}
	return voter, nil
}

// Voter retrieves a voter by UID.
func (s *Service) Voter(uid string) (*types.Voter, error) {
	voter, err := s.stg.Voter(uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrVoterNotFound
		}
		return nil, err
	}
	return voter, nil
}

// RegisterVoter links an existing voter to an election. Registration is only
// accepted while voting is open.
func (s *Service) RegisterVoter(electionID types.HexBytes, voterUID string) (*types.Registration, error) {
	elec, err := s.Election(electionID)
	if err != nil {
		return nil, err
	}
	if err := CanVote(elec); err != nil {
		return nil, err
	}
	if _, err := s.Voter(voterUID); err != nil {
		return nil, err
	}
	reg := &types.Registration{
		ElectionID: electionID,
		VoterUID:   voterUID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.stg.Register(reg); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			return nil, types.ErrAlreadyExists
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrVoterNotFound
		}
		return nil, err
	}
	return reg, nil
}

// Registrations lists all registrations for an election.
func (s *Service) Registrations(electionID types.HexBytes) ([]*types.Registration, error) {
	if _, err := s.Election(electionID); err != nil {
		return nil, err
	}
	return s.stg.ListRegistrations(electionID)
}
