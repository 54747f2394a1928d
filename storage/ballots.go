package storage

import (
	"fmt"

	"github.com/voteguard/voteguard-node/db"
	"github.com/voteguard/voteguard-node/db/prefixeddb"
	"github.com/voteguard/voteguard-node/types"
)

// ErrBallotExists is returned by NewBallot when the (election, voter) pair
// already holds a ballot. Callers map it to the AlreadyVoted domain error.
var ErrBallotExists = fmt.Errorf("ballot already exists for this voter")

// ErrElectionNotOpen is returned by NewBallot when the election is no longer
// accepting ballots at commit time.
var ErrElectionNotOpen = fmt.Errorf("election is not open for voting")

// ballotKey builds the composite primary key electionID + voterUID.
func ballotKey(electionID types.HexBytes, voterUID string) []byte {
	return append(append([]byte{}, electionID...), []byte(voterUID)...)
}

// NewBallot stores a ballot and its two verification indexes in a single
// transaction. The uniqueness check for the (election, voter) pair and the
// election status re-check both happen inside the same transaction under the
// global lock, so two concurrent submissions cannot both commit and a ballot
// cannot land in an election that closed after the caller's snapshot check:
// the losers fail with ErrBallotExists or ErrElectionNotOpen.
func (s *Storage) NewBallot(ballot *types.Ballot) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if ballot == nil || ballot.VoterUID == "" || len(ballot.ElectionID) == 0 {
		return fmt.Errorf("incomplete ballot data")
	}
	election := &types.Election{}
	if err := s.getArtifact(electionPrefix, ballot.ElectionID, election); err != nil {
		return err
	}
	if election.Status != types.ElectionStatusVotingOpen {
		return ErrElectionNotOpen
	}
	data, err := EncodeArtifact(ballot)
	if err != nil {
		return err
	}

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	key := ballotKey(ballot.ElectionID, ballot.VoterUID)
	ballotTx := prefixeddb.NewPrefixedWriteTx(wTx, ballotPrefix)
	if _, err := ballotTx.Get(key); err == nil {
		return ErrBallotExists
	} else if err != db.ErrKeyNotFound {
		return err
	}
	if err := ballotTx.Set(key, data); err != nil {
		return err
	}

	secretTx := prefixeddb.NewPrefixedWriteTx(wTx, ballotSecretPrefix)
	if _, err := secretTx.Get([]byte(ballot.BallotSecret)); err == nil {
		return ErrKeyAlreadyExists
	} else if err != db.ErrKeyNotFound {
		return err
	}
	if err := secretTx.Set([]byte(ballot.BallotSecret), key); err != nil {
		return err
	}

	codeTx := prefixeddb.NewPrefixedWriteTx(wTx, verificationCodePrefix)
	if _, err := codeTx.Get([]byte(ballot.VerificationCode)); err == nil {
		return ErrKeyAlreadyExists
	} else if err != db.ErrKeyNotFound {
		return err
	}
	if err := codeTx.Set([]byte(ballot.VerificationCode), key); err != nil {
		return err
	}
	return wTx.Commit()
}

// Ballot retrieves the ballot cast by a voter in an election.
func (s *Storage) Ballot(electionID types.HexBytes, voterUID string) (*types.Ballot, error) {
	ballot := &types.Ballot{}
	if err := s.getArtifact(ballotPrefix, ballotKey(electionID, voterUID), ballot); err != nil {
		return nil, err
	}
	return ballot, nil
}

// HasBallot reports whether the voter already cast a ballot in the election.
func (s *Storage) HasBallot(electionID types.HexBytes, voterUID string) bool {
	_, err := prefixeddb.NewPrefixedReader(s.db, ballotPrefix).Get(ballotKey(electionID, voterUID))
	return err == nil
}

// BallotBySecret resolves a ballot through the private ballot secret index.
func (s *Storage) BallotBySecret(secret string) (*types.Ballot, error) {
	return s.ballotByIndex(ballotSecretPrefix, secret)
}

// BallotByCode resolves a ballot through the public verification code index.
func (s *Storage) BallotByCode(code string) (*types.Ballot, error) {
	return s.ballotByIndex(verificationCodePrefix, code)
}

func (s *Storage) ballotByIndex(prefix []byte, indexKey string) (*types.Ballot, error) {
	key, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get([]byte(indexKey))
	if err != nil {
		return nil, ErrNotFound
	}
	ballot := &types.Ballot{}
	if err := s.getArtifact(ballotPrefix, key, ballot); err != nil {
		return nil, err
	}
	return ballot, nil
}

// ListBallots retrieves all ballots cast in an election.
func (s *Storage) ListBallots(electionID types.HexBytes) ([]*types.Ballot, error) {
	var ballots []*types.Ballot
	var iterErr error
	err := prefixeddb.NewPrefixedReader(s.db, ballotPrefix).Iterate(electionID, func(_, v []byte) bool {
		ballot := &types.Ballot{}
		if err := DecodeArtifact(v, ballot); err != nil {
			iterErr = err
			return false
		}
		ballots = append(ballots, ballot)
		return true
	})
	if err != nil {
		return nil, err
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return ballots, nil
}

// CountBallots returns the number of ballots cast in an election.
func (s *Storage) CountBallots(electionID types.HexBytes) (int, error) {
	count := 0
	err := prefixeddb.NewPrefixedReader(s.db, ballotPrefix).Iterate(electionID, func(_, _ []byte) bool {
		count++
		return true
	})
	return count, err
}
