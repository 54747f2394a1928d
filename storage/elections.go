package storage

import (
	"fmt"
	"time"

	"github.com/voteguard/voteguard-node/types"
)

// Election retrieves an election from the storage. It returns ErrNotFound if
// the election does not exist.
func (s *Storage) Election(id types.HexBytes) (*types.Election, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.electionUnsafe(id)
}

func (s *Storage) electionUnsafe(id types.HexBytes) (*types.Election, error) {
	if cached, ok := s.cache.Get(electionCacheKey(id)); ok {
		return cached.(*types.Election), nil
	}
	election := &types.Election{}
	if err := s.getArtifact(electionPrefix, id, election); err != nil {
		return nil, err
	}
	s.cache.Add(electionCacheKey(id), election)
	return election, nil
}

// NewElection stores a new election. It returns ErrKeyAlreadyExists if an
// election with the same ID exists, so accidental overwrites of immutable
// cryptographic material are impossible.
func (s *Storage) NewElection(election *types.Election) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if election == nil {
		return fmt.Errorf("nil election data")
	}
	existing := &types.Election{}
	if err := s.getArtifact(electionPrefix, election.ID, existing); err == nil {
		return ErrKeyAlreadyExists
	} else if err != ErrNotFound {
		return fmt.Errorf("failed to check election existence: %w", err)
	}
	if err := s.setArtifact(electionPrefix, election.ID, election); err != nil {
		return err
	}
	s.cache.Remove(electionCacheKey(election.ID))
	return nil
}

// ListElections retrieves all election IDs in the storage.
func (s *Storage) ListElections() ([]types.HexBytes, error) {
	keys, err := s.listArtifacts(electionPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]types.HexBytes, len(keys))
	for i, k := range keys {
		ids[i] = types.HexBytes(k)
	}
	return ids, nil
}

// ElectionUpdateCallback modifies an election in place inside UpdateElection.
type ElectionUpdateCallback func(*types.Election) error

// UpdateElection atomically applies the callbacks to the stored election and
// persists the result. The read, the callbacks and the write all happen under
// the global lock, so concurrent updates cannot interleave.
func (s *Storage) UpdateElection(id types.HexBytes, callbacks ...ElectionUpdateCallback) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	election := &types.Election{}
	if err := s.getArtifact(electionPrefix, id, election); err != nil {
		return err
	}
	for _, cb := range callbacks {
		if err := cb(election); err != nil {
			return err
		}
	}
	if err := s.setArtifact(electionPrefix, id, election); err != nil {
		return err
	}
	s.cache.Remove(electionCacheKey(id))
	return nil
}

// CASElectionStatus performs an atomic check-and-set on the election status:
// the status is advanced to "to" only if it is still "from". It returns
// ErrStatusConflict when the precondition does not hold.
func (s *Storage) CASElectionStatus(id types.HexBytes, from, to types.ElectionStatus) error {
	return s.UpdateElection(id, func(e *types.Election) error {
		if e.Status != from {
			return fmt.Errorf("%w: status is %s, expected %s", ErrStatusConflict, e.Status, from)
		}
		e.Status = to
		return nil
	})
}

// ErrStatusConflict is returned by CASElectionStatus when the election status
// no longer matches the expected value.
var ErrStatusConflict = fmt.Errorf("election status conflict")

// CloseElection sets the election status to Closed and stamps the close time
// if not already set.
func CloseElection(now time.Time) ElectionUpdateCallback {
	return func(e *types.Election) error {
		e.Status = types.ElectionStatusClosed
		if e.ClosedAt == nil {
			closedAt := now
			e.ClosedAt = &closedAt
		}
		return nil
	}
}

// SetTallyResults writes the decrypted per-candidate counts, totals and
// percentages into the election.
func SetTallyResults(counts []uint64, totalVotes uint64, encryptedTally types.CryptoPayload) ElectionUpdateCallback {
	return func(e *types.Election) error {
		if len(counts) != len(e.Candidates) {
			return fmt.Errorf("got %d counts for %d candidates", len(counts), len(e.Candidates))
		}
		for i := range e.Candidates {
			e.Candidates[i].VoteCount = counts[i]
			if totalVotes > 0 {
				e.Candidates[i].VotePercentage = float64(counts[i]) / float64(totalVotes) * 100
			} else {
				e.Candidates[i].VotePercentage = 0
			}
		}
		e.TotalVotes = totalVotes
		e.EncryptedTally = encryptedTally
		e.Tallied = true
		return nil
	}
}

func electionCacheKey(id types.HexBytes) string {
	return "e:" + id.Hex()
}
