package storage

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/db/metadb"
	"github.com/voteguard/voteguard-node/types"
)

func testStorage(t *testing.T) *Storage {
	s := New(metadb.NewTest(t))
	return s
}

func testElection(id byte) *types.Election {
	return &types.Election{
		ID:            types.HexBytes{id, 0x01, 0x02, 0x03},
		Name:          "board election",
		Status:        types.ElectionStatusVotingOpen,
		MaxSelections: 1,
		Candidates: []types.Candidate{
			{Index: 0, Name: "Alice"},
			{Index: 1, Name: "Bob"},
		},
		NumGuardians: 1,
		Quorum:       1,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestElectionLifecycle(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	election := testElection(0xaa)
	c.Assert(s.NewElection(election), qt.IsNil)
	c.Assert(s.NewElection(election), qt.Equals, ErrKeyAlreadyExists)

	got, err := s.Election(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Name, qt.Equals, "board election")
	c.Assert(got.Status, qt.Equals, types.ElectionStatusVotingOpen)

	_, err = s.Election(types.HexBytes{0xde, 0xad})
	c.Assert(err, qt.Equals, ErrNotFound)

	// CAS succeeds from the expected status and fails afterwards
	c.Assert(s.CASElectionStatus(election.ID, types.ElectionStatusVotingOpen, types.ElectionStatusTallying), qt.IsNil)
	err = s.CASElectionStatus(election.ID, types.ElectionStatusVotingOpen, types.ElectionStatusTallying)
	c.Assert(err, qt.ErrorIs, ErrStatusConflict)

	ids, err := s.ListElections()
	c.Assert(err, qt.IsNil)
	c.Assert(ids, qt.HasLen, 1)
}

func TestTallyResultsCommit(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	election := testElection(0xbb)
	c.Assert(s.NewElection(election), qt.IsNil)

	err := s.UpdateElection(election.ID,
		SetTallyResults([]uint64{3, 1}, 4, types.CryptoPayload{Version: 1, Data: []byte{0x01}}),
		CloseElection(time.Now()),
	)
	c.Assert(err, qt.IsNil)

	got, err := s.Election(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.ElectionStatusClosed)
	c.Assert(got.Tallied, qt.IsTrue)
	c.Assert(got.ClosedAt, qt.IsNotNil)
	c.Assert(got.TotalVotes, qt.Equals, uint64(4))
	c.Assert(got.Candidates[0].VoteCount, qt.Equals, uint64(3))
	c.Assert(got.Candidates[0].VotePercentage, qt.Equals, 75.0)
	c.Assert(got.Candidates[1].VotePercentage, qt.Equals, 25.0)

	// count width mismatch leaves the election untouched
	err = s.UpdateElection(election.ID, SetTallyResults([]uint64{1}, 1, types.CryptoPayload{}))
	c.Assert(err, qt.IsNotNil)
}

func TestVotersAndRegistrations(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	voter := &types.Voter{UID: "voter-1", Name: "Dana", Secret: "secret-1", CreatedAt: time.Now()}
	c.Assert(s.NewVoter(voter), qt.IsNil)
	c.Assert(s.NewVoter(voter), qt.Equals, ErrKeyAlreadyExists)

	// duplicate secret under a fresh UID is rejected too
	c.Assert(s.NewVoter(&types.Voter{UID: "voter-2", Name: "Eve", Secret: "secret-1"}), qt.Equals, ErrKeyAlreadyExists)

	got, err := s.VoterBySecret("secret-1")
	c.Assert(err, qt.IsNil)
	c.Assert(got.UID, qt.Equals, "voter-1")
	_, err = s.VoterBySecret("nope")
	c.Assert(err, qt.Equals, ErrNotFound)

	election := testElection(0xcc)
	c.Assert(s.NewElection(election), qt.IsNil)

	reg := &types.Registration{ElectionID: election.ID, VoterUID: "voter-1", CreatedAt: time.Now()}
	c.Assert(s.Register(reg), qt.IsNil)
	c.Assert(s.Register(reg), qt.Equals, ErrKeyAlreadyExists)
	c.Assert(s.IsRegistered(election.ID, "voter-1"), qt.IsTrue)
	c.Assert(s.IsRegistered(election.ID, "voter-9"), qt.IsFalse)

	// registration requires both sides to exist
	c.Assert(s.Register(&types.Registration{ElectionID: election.ID, VoterUID: "ghost"}), qt.Equals, ErrNotFound)
	c.Assert(s.Register(&types.Registration{ElectionID: types.HexBytes{0xff}, VoterUID: "voter-1"}), qt.Equals, ErrNotFound)

	regs, err := s.ListRegistrations(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(regs, qt.HasLen, 1)
}

func TestBallotUniquenessAndIndexes(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	election := testElection(0xdd)
	c.Assert(s.NewElection(election), qt.IsNil)

	ballot := &types.Ballot{
		ElectionID:         election.ID,
		VoterUID:           "voter-1",
		BallotSecret:       "ballot-secret-1",
		VerificationCode:   "A1B2-C3D4-E5F6-0102",
		SelectedCandidates: []uint32{0},
		CastAt:             time.Now(),
	}
	c.Assert(s.NewBallot(ballot), qt.IsNil)

	// a second ballot for the same pair is rejected
	dup := *ballot
	dup.BallotSecret = "ballot-secret-2"
	c.Assert(s.NewBallot(&dup), qt.Equals, ErrBallotExists)

	c.Assert(s.HasBallot(election.ID, "voter-1"), qt.IsTrue)
	c.Assert(s.HasBallot(election.ID, "voter-2"), qt.IsFalse)

	bySecret, err := s.BallotBySecret("ballot-secret-1")
	c.Assert(err, qt.IsNil)
	c.Assert(bySecret.VoterUID, qt.Equals, "voter-1")

	byCode, err := s.BallotByCode("A1B2-C3D4-E5F6-0102")
	c.Assert(err, qt.IsNil)
	c.Assert(byCode.VoterUID, qt.Equals, "voter-1")

	_, err = s.BallotBySecret("missing")
	c.Assert(err, qt.Equals, ErrNotFound)

	other := &types.Ballot{
		ElectionID:         election.ID,
		VoterUID:           "voter-2",
		BallotSecret:       "ballot-secret-2",
		VerificationCode:   "FFFF-0000-FFFF-0000",
		SelectedCandidates: []uint32{1},
		CastAt:             time.Now(),
	}
	c.Assert(s.NewBallot(other), qt.IsNil)

	ballots, err := s.ListBallots(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ballots, qt.HasLen, 2)

	count, err := s.CountBallots(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 2)
}

func TestConcurrentBallotSubmission(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	election := testElection(0xee)
	c.Assert(s.NewElection(election), qt.IsNil)

	const attempts = 10
	errCh := make(chan error, attempts)
	for i := range attempts {
		go func(i int) {
			errCh <- s.NewBallot(&types.Ballot{
				ElectionID:       election.ID,
				VoterUID:         "voter-1",
				BallotSecret:     "secret-" + string(rune('a'+i)),
				VerificationCode: "CODE-" + string(rune('a'+i)),
				CastAt:           time.Now(),
			})
		}(i)
	}
	committed := 0
	for range attempts {
		if err := <-errCh; err == nil {
			committed++
		} else {
			c.Assert(err, qt.Equals, ErrBallotExists)
		}
	}
	c.Assert(committed, qt.Equals, 1)
}

func TestBallotRejectedAfterClose(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	election := testElection(0xab)
	c.Assert(s.NewElection(election), qt.IsNil)

	// a ballot whose lifecycle check passed while voting was open must not
	// commit once the election moved on
	c.Assert(s.UpdateElection(election.ID, CloseElection(time.Now().UTC())), qt.IsNil)
	err := s.NewBallot(&types.Ballot{
		ElectionID:       election.ID,
		VoterUID:         "voter-1",
		BallotSecret:     "ballot-secret-1",
		VerificationCode: "AAAA-BBBB-CCCC-DDDD",
		CastAt:           time.Now(),
	})
	c.Assert(err, qt.ErrorIs, ErrElectionNotOpen)

	ballots, err := s.ListBallots(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ballots, qt.HasLen, 0)
}

func TestBallotRejectedWhileTallying(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	election := testElection(0xac)
	c.Assert(s.NewElection(election), qt.IsNil)
	c.Assert(s.CASElectionStatus(election.ID, types.ElectionStatusVotingOpen, types.ElectionStatusTallying), qt.IsNil)

	err := s.NewBallot(&types.Ballot{
		ElectionID:       election.ID,
		VoterUID:         "voter-1",
		BallotSecret:     "ballot-secret-1",
		VerificationCode: "AAAA-BBBB-CCCC-DDDD",
		CastAt:           time.Now(),
	})
	c.Assert(err, qt.ErrorIs, ErrElectionNotOpen)
}

func TestVerificationCodeCollision(t *testing.T) {
	c := qt.New(t)
	s := testStorage(t)

	election := testElection(0xad)
	c.Assert(s.NewElection(election), qt.IsNil)

	first := &types.Ballot{
		ElectionID:       election.ID,
		VoterUID:         "voter-1",
		BallotSecret:     "ballot-secret-1",
		VerificationCode: "A1B2-C3D4-E5F6-0102",
		CastAt:           time.Now(),
	}
	c.Assert(s.NewBallot(first), qt.IsNil)

	// a colliding code must not repoint the public lookup of the first ballot
	collision := &types.Ballot{
		ElectionID:       election.ID,
		VoterUID:         "voter-2",
		BallotSecret:     "ballot-secret-2",
		VerificationCode: "A1B2-C3D4-E5F6-0102",
		CastAt:           time.Now(),
	}
	c.Assert(s.NewBallot(collision), qt.Equals, ErrKeyAlreadyExists)

	byCode, err := s.BallotByCode("A1B2-C3D4-E5F6-0102")
	c.Assert(err, qt.IsNil)
	c.Assert(byCode.VoterUID, qt.Equals, "voter-1")
	c.Assert(s.HasBallot(election.ID, "voter-2"), qt.IsFalse)
}
