package tally

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/ballot"
	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/db/metadb"
	"github.com/voteguard/voteguard-node/election"
	"github.com/voteguard/voteguard-node/storage"
	"github.com/voteguard/voteguard-node/types"
)

type fixture struct {
	elections *election.Service
	ballots   *ballot.Service
	tally     *Orchestrator
	election  *types.Election
}

func newFixture(t *testing.T, params election.CreateParams) *fixture {
	stg := storage.New(metadb.NewTest(t))
	eng := engine.New()
	elections := election.NewService(stg, eng)
	elec, err := elections.CreateElection(params)
	qt.Assert(t, err, qt.IsNil)
	return &fixture{
		elections: elections,
		ballots:   ballot.NewService(stg, eng),
		tally:     New(stg, eng),
		election:  elec,
	}
}

func defaultParams() election.CreateParams {
	now := time.Now().UTC()
	return election.CreateParams{
		Name:           "board election",
		CandidateNames: []string{"Alice", "Bob", "Carol"},
		MaxSelections:  1,
		StartDate:      now,
		EndDate:        now.Add(24 * time.Hour),
	}
}

func (f *fixture) castVotes(t *testing.T, selections ...[]uint32) {
	for i, sel := range selections {
		voter, err := f.elections.CreateVoter("voter")
		qt.Assert(t, err, qt.IsNil)
		_, err = f.elections.RegisterVoter(f.election.ID, voter.UID)
		qt.Assert(t, err, qt.IsNil)
		_, err = f.ballots.Cast(f.election.ID, voter.Secret, sel)
		qt.Assert(t, err, qt.IsNil, qt.Commentf("vote %d", i))
	}
}

func TestTallyScenario(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, defaultParams())

	// votes in order: Alice, Bob, Alice, Carol, Alice
	f.castVotes(t, []uint32{0}, []uint32{1}, []uint32{0}, []uint32{2}, []uint32{0})

	elec, err := f.tally.Run(f.election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(elec.Status, qt.Equals, types.ElectionStatusClosed)
	c.Assert(elec.Tallied, qt.IsTrue)
	c.Assert(elec.ClosedAt, qt.IsNotNil)
	c.Assert(elec.TotalVotes, qt.Equals, uint64(5))
	c.Assert(elec.EncryptedTally.IsZero(), qt.IsFalse)

	c.Assert(elec.Candidates[0].VoteCount, qt.Equals, uint64(3))
	c.Assert(elec.Candidates[0].VotePercentage, qt.Equals, 60.0)
	c.Assert(elec.Candidates[1].VoteCount, qt.Equals, uint64(1))
	c.Assert(elec.Candidates[1].VotePercentage, qt.Equals, 20.0)
	c.Assert(elec.Candidates[2].VoteCount, qt.Equals, uint64(1))
	c.Assert(elec.Candidates[2].VotePercentage, qt.Equals, 20.0)

	// sum of counts equals ballots * k
	var sum uint64
	for _, cand := range elec.Candidates {
		sum += cand.VoteCount
	}
	c.Assert(sum, qt.Equals, uint64(5))

	// re-running the tally on a tallied election is rejected
	_, err = f.tally.Run(f.election.ID)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
}

func TestTallyMultiSelection(t *testing.T) {
	c := qt.New(t)
	params := defaultParams()
	params.MaxSelections = 2
	f := newFixture(t, params)

	f.castVotes(t, []uint32{0, 1}, []uint32{0, 2}, []uint32{1, 2})

	elec, err := f.tally.Run(f.election.ID)
	c.Assert(err, qt.IsNil)
	// sum(vote_count) == ballots * k
	var sum uint64
	for _, cand := range elec.Candidates {
		sum += cand.VoteCount
	}
	c.Assert(sum, qt.Equals, uint64(3*2))
	c.Assert(elec.Candidates[0].VoteCount, qt.Equals, uint64(2))
	c.Assert(elec.Candidates[1].VoteCount, qt.Equals, uint64(2))
	c.Assert(elec.Candidates[2].VoteCount, qt.Equals, uint64(2))
	c.Assert(elec.TotalVotes, qt.Equals, uint64(6))
}

func TestTallyZeroBallots(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, defaultParams())

	elec, err := f.tally.Run(f.election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(elec.Status, qt.Equals, types.ElectionStatusClosed)
	c.Assert(elec.Tallied, qt.IsTrue)
	c.Assert(elec.TotalVotes, qt.Equals, uint64(0))
	for _, cand := range elec.Candidates {
		c.Assert(cand.VoteCount, qt.Equals, uint64(0))
		c.Assert(cand.VotePercentage, qt.Equals, 0.0)
	}
}

func TestTallyAfterClose(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, defaultParams())
	f.castVotes(t, []uint32{1})

	_, err := f.elections.CloseVoting(f.election.ID)
	c.Assert(err, qt.IsNil)

	// tally is still legal on a closed, untallied election
	elec, err := f.tally.Run(f.election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(elec.Candidates[1].VoteCount, qt.Equals, uint64(1))
	c.Assert(elec.Candidates[1].VotePercentage, qt.Equals, 100.0)
}

func TestTallyMultiGuardian(t *testing.T) {
	c := qt.New(t)
	params := defaultParams()
	params.NumGuardians = 3
	params.Quorum = 2
	f := newFixture(t, params)

	f.castVotes(t, []uint32{0}, []uint32{0}, []uint32{2})

	elec, err := f.tally.Run(f.election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(elec.Candidates[0].VoteCount, qt.Equals, uint64(2))
	c.Assert(elec.Candidates[2].VoteCount, qt.Equals, uint64(1))
	c.Assert(elec.TotalVotes, qt.Equals, uint64(3))
}

func TestTallyUnknownElection(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, defaultParams())
	_, err := f.tally.Run(types.HexBytes{0xde, 0xad})
	c.Assert(err, qt.ErrorIs, types.ErrElectionNotFound)
}
