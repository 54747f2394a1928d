// Package tally implements the homomorphic tally orchestration: aggregate
// all ciphertext ballots without decrypting any of them, threshold-decrypt
// the aggregate and map the per-selection counts back to candidates.
package tally

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/election"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/storage"
	"github.com/voteguard/voteguard-node/types"
)

// Orchestrator runs tallies. An election enters the transient Tallying status
// while its tally executes, which makes concurrent tallies and closes on the
// same election impossible: only one caller wins the status check-and-set.
type Orchestrator struct {
	stg *storage.Storage
	eng engine.Engine
}

// New creates a new tally orchestrator.
func New(stg *storage.Storage, eng engine.Engine) *Orchestrator {
	return &Orchestrator{stg: stg, eng: eng}
}

// Run executes the tally for an election and returns it closed with results
// committed. Any failure rolls the election back to its pre-tally status with
// no partial counts visible.
func (o *Orchestrator) Run(electionID types.HexBytes) (*types.Election, error) {
	// enter the transient Tallying status; the check and the transition are
	// atomic, so a concurrent tally or close loses here
	var priorStatus types.ElectionStatus
	err := o.stg.UpdateElection(electionID, func(e *types.Election) error {
		if err := election.CanTally(e); err != nil {
			return err
		}
		priorStatus = e.Status
		e.Status = types.ElectionStatusTallying
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrElectionNotFound
		}
		return nil, err
	}

	elec, counts, totalVotes, encTally, err := o.execute(electionID)
	if err != nil {
		// roll back to the pre-tally status; results were never committed
		if rbErr := o.stg.UpdateElection(electionID, func(e *types.Election) error {
			e.Status = priorStatus
			return nil
		}); rbErr != nil {
			log.Errorw(rbErr, "failed to roll back election status after tally failure")
		}
		return nil, err
	}

	// commit results and close, conditional on still being in Tallying
	err = o.stg.UpdateElection(electionID,
		func(e *types.Election) error {
			if e.Status != types.ElectionStatusTallying {
				return fmt.Errorf("%w: election left tallying status", types.ErrTallyFailure)
			}
			return nil
		},
		storage.SetTallyResults(counts, totalVotes, encTally),
		storage.CloseElection(time.Now().UTC()),
	)
	if err != nil {
		if rbErr := o.stg.UpdateElection(electionID, func(e *types.Election) error {
			e.Status = priorStatus
			return nil
		}); rbErr != nil {
			log.Errorw(rbErr, "failed to roll back election status after commit failure")
		}
		return nil, err
	}
	log.Infow("tally committed", "election", electionID.String(),
		"totalVotes", totalVotes, "candidates", len(elec.Candidates))
	return o.stg.Election(electionID)
}

// execute performs the cryptographic part of the tally with the election
// already parked in Tallying.
func (o *Orchestrator) execute(electionID types.HexBytes) (*types.Election, []uint64, uint64, types.CryptoPayload, error) {
	none := types.CryptoPayload{}
	elec, err := o.stg.Election(electionID)
	if err != nil {
		return nil, nil, 0, none, err
	}
	ballots, err := o.stg.ListBallots(electionID)
	if err != nil {
		return nil, nil, 0, none, fmt.Errorf("%w: %v", types.ErrTallyFailure, err)
	}

	// zero ballots is not an error: close with zero counts, skipping the
	// aggregation and decryption entirely
	if len(ballots) == 0 {
		return elec, make([]uint64, len(elec.Candidates)), 0, none, nil
	}

	ctx, err := election.ContextFromElection(elec)
	if err != nil {
		return nil, nil, 0, none, fmt.Errorf("%w: %v", types.ErrTallyFailure, err)
	}
	keys, err := election.GuardianKeysFromElection(elec)
	if err != nil {
		return nil, nil, 0, none, fmt.Errorf("%w: %v", types.ErrTallyFailure, err)
	}

	// gate every ballot for aggregation: decode its payload and verify the
	// well-formedness proofs; a ballot that does not pass is not summed
	ciphertexts := make([][]byte, len(ballots))
	for i, b := range ballots {
		sel := &engine.EncryptedSelection{}
		if err := election.DecodePayload(b.Ciphertext, sel); err != nil {
			return nil, nil, 0, none, fmt.Errorf("%w: ballot %s: %v", types.ErrTallyFailure, b.VerificationCode, err)
		}
		if err := o.eng.VerifySelectionProofs(sel, ctx); err != nil {
			return nil, nil, 0, none, fmt.Errorf("%w: ballot %s: %v", types.ErrTallyFailure, b.VerificationCode, err)
		}
		ciphertexts[i] = sel.Ballot
	}

	aggregate, err := o.aggregate(ctx, ciphertexts)
	if err != nil {
		return nil, nil, 0, none, fmt.Errorf("%w: %v", types.ErrTallyFailure, err)
	}

	// threshold decryption with a quorum of guardian shares
	quorum := keys.ParticipantIDs
	if len(quorum) > keys.Quorum {
		quorum = quorum[:keys.Quorum]
	}
	shares := make([]*engine.DecryptionShare, len(quorum))
	for i, id := range quorum {
		share, err := o.eng.ComputeDecryptionShare(keys, id, aggregate)
		if err != nil {
			return nil, nil, 0, none, fmt.Errorf("%w: %v", types.ErrTallyFailure, err)
		}
		shares[i] = share
	}
	counts, err := o.eng.DecryptWithShares(aggregate, shares, ctx, uint64(len(ballots)))
	if err != nil {
		return nil, nil, 0, none, fmt.Errorf("%w: %v", types.ErrTallyFailure, err)
	}
	if len(counts) != len(elec.Candidates) {
		return nil, nil, 0, none, fmt.Errorf("%w: got %d counts for %d candidates",
			types.ErrTallyFailure, len(counts), len(elec.Candidates))
	}

	var totalVotes uint64
	for _, count := range counts {
		totalVotes += count
	}
	encTally, err := election.EncodePayload(aggregate)
	if err != nil {
		return nil, nil, 0, none, fmt.Errorf("%w: %v", types.ErrTallyFailure, err)
	}
	return elec, counts, totalVotes, encTally, nil
}

// aggregate folds the ciphertexts into one homomorphic sum. The addition is
// associative and commutative, so the ballots are folded in parallel partial
// sums and the partials combined, one goroutine per CPU.
func (o *Orchestrator) aggregate(ctx *engine.Context, ciphertexts [][]byte) ([]byte, error) {
	workers := min(runtime.NumCPU(), len(ciphertexts))
	chunkSize := (len(ciphertexts) + workers - 1) / workers

	partials := make([][]byte, workers)
	g := new(errgroup.Group)
	for w := range workers {
		start := w * chunkSize
		if start >= len(ciphertexts) {
			continue
		}
		end := min(start+chunkSize, len(ciphertexts))
		g.Go(func() error {
			partial := ciphertexts[start]
			for _, ct := range ciphertexts[start+1 : end] {
				sum, err := o.eng.HomomorphicAdd(ctx, partial, ct)
				if err != nil {
					return err
				}
				partial = sum
			}
			partials[w] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var aggregate []byte
	for _, partial := range partials {
		if partial == nil {
			continue
		}
		if aggregate == nil {
			aggregate = partial
			continue
		}
		sum, err := o.eng.HomomorphicAdd(ctx, aggregate, partial)
		if err != nil {
			return nil, err
		}
		aggregate = sum
	}
	return aggregate, nil
}
