package election

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/db/metadb"
	"github.com/voteguard/voteguard-node/storage"
	"github.com/voteguard/voteguard-node/types"
)

func testService(t *testing.T) *Service {
	return NewService(storage.New(metadb.NewTest(t)), engine.New())
}

func testParams() CreateParams {
	now := time.Now().UTC()
	return CreateParams{
		Name:           "board election",
		CandidateNames: []string{"Alice", "Bob", "Carol"},
		MaxSelections:  1,
		StartDate:      now,
		EndDate:        now.Add(24 * time.Hour),
	}
}

func TestCreateElection(t *testing.T) {
	c := qt.New(t)
	s := testService(t)

	elec, err := s.CreateElection(testParams())
	c.Assert(err, qt.IsNil)
	// elections are never observable without cryptographic material
	c.Assert(elec.Status, qt.Equals, types.ElectionStatusVotingOpen)
	c.Assert(elec.JointPublicKey, qt.Not(qt.HasLen), 0)
	c.Assert(elec.Context.IsZero(), qt.IsFalse)
	c.Assert(elec.GuardianKeys.IsZero(), qt.IsFalse)
	c.Assert(elec.Manifest.IsZero(), qt.IsFalse)
	c.Assert(elec.NumGuardians, qt.Equals, 1)
	c.Assert(elec.Quorum, qt.Equals, 1)

	// persisted crypto material decodes back
	manifest, err := ManifestFromElection(elec)
	c.Assert(err, qt.IsNil)
	c.Assert(manifest.Contest.Selections, qt.HasLen, 3)
	ctx, err := ContextFromElection(elec)
	c.Assert(err, qt.IsNil)
	c.Assert(ctx.NumSelections, qt.Equals, 3)
	keys, err := GuardianKeysFromElection(elec)
	c.Assert(err, qt.IsNil)
	c.Assert(keys.NumGuardians, qt.Equals, 1)

	got, err := s.Election(elec.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Name, qt.Equals, "board election")
}

func TestCreateElectionMultiGuardian(t *testing.T) {
	c := qt.New(t)
	s := testService(t)

	params := testParams()
	params.NumGuardians = 3
	params.Quorum = 2
	elec, err := s.CreateElection(params)
	c.Assert(err, qt.IsNil)

	keys, err := GuardianKeysFromElection(elec)
	c.Assert(err, qt.IsNil)
	c.Assert(keys.NumGuardians, qt.Equals, 3)
	c.Assert(keys.Quorum, qt.Equals, 2)
	c.Assert(keys.PrivateShares, qt.HasLen, 3)
}

func TestCloseVoting(t *testing.T) {
	c := qt.New(t)
	s := testService(t)

	elec, err := s.CreateElection(testParams())
	c.Assert(err, qt.IsNil)

	closed, err := s.CloseVoting(elec.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(closed.Status, qt.Equals, types.ElectionStatusClosed)
	c.Assert(closed.ClosedAt, qt.IsNotNil)

	// re-closing is rejected, not ignored
	_, err = s.CloseVoting(elec.ID)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidState)

	_, err = s.CloseVoting(types.HexBytes{0xde, 0xad})
	c.Assert(err, qt.ErrorIs, types.ErrElectionNotFound)
}

func TestVoterRegistration(t *testing.T) {
	c := qt.New(t)
	s := testService(t)

	elec, err := s.CreateElection(testParams())
	c.Assert(err, qt.IsNil)

	voter, err := s.CreateVoter("Dana")
	c.Assert(err, qt.IsNil)
	c.Assert(voter.UID, qt.Not(qt.Equals), "")
	c.Assert(voter.Secret, qt.HasLen, 32)

	reg, err := s.RegisterVoter(elec.ID, voter.UID)
	c.Assert(err, qt.IsNil)
	c.Assert(reg.VoterUID, qt.Equals, voter.UID)

	// at most one registration per (election, voter) pair
	_, err = s.RegisterVoter(elec.ID, voter.UID)
	c.Assert(err, qt.ErrorIs, types.ErrAlreadyExists)

	_, err = s.RegisterVoter(elec.ID, "ghost")
	c.Assert(err, qt.ErrorIs, types.ErrVoterNotFound)

	regs, err := s.Registrations(elec.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(regs, qt.HasLen, 1)

	// registrations close with the voting window
	_, err = s.CloseVoting(elec.ID)
	c.Assert(err, qt.IsNil)
	voter2, err := s.CreateVoter("Eli")
	c.Assert(err, qt.IsNil)
	_, err = s.RegisterVoter(elec.ID, voter2.UID)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidState)
}

func TestCreateElectionInvalidParams(t *testing.T) {
	c := qt.New(t)
	s := testService(t)

	params := testParams()
	params.NumGuardians = -1
	_, err := s.CreateElection(params)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidParams)

	params = testParams()
	params.Quorum = -2
	_, err = s.CreateElection(params)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidParams)

	params = testParams()
	params.NumGuardians = 2
	params.Quorum = 3
	_, err = s.CreateElection(params)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidParams)

	// manifest validation failures surface as parameter errors too
	params = testParams()
	params.CandidateNames = []string{"Alice"}
	_, err = s.CreateElection(params)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidParams)

	params = testParams()
	params.MaxSelections = 4
	_, err = s.CreateElection(params)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidParams)
}
