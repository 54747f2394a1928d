package service

import (
	"context"
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

func TestDeadlineMonitor(t *testing.T) {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))
	eng := engine.New()
	elections := election.NewService(stg, eng)
	ballots := ballot.NewService(stg, eng)

	now := time.Now().UTC()
	expired, err := elections.CreateElection(election.CreateParams{
		Name:           "expired",
		CandidateNames: []string{"Alice", "Bob"},
		MaxSelections:  1,
		StartDate:      now.Add(-2 * time.Hour),
		EndDate:        now.Add(-time.Hour),
	})
	c.Assert(err, qt.IsNil)
	open, err := elections.CreateElection(election.CreateParams{
		Name:           "still open",
		CandidateNames: []string{"Alice", "Bob"},
		MaxSelections:  1,
		StartDate:      now,
		EndDate:        now.Add(time.Hour),
	})
	c.Assert(err, qt.IsNil)

	voter, err := elections.CreateVoter("Frank")
	c.Assert(err, qt.IsNil)
	_, err = elections.RegisterVoter(expired.ID, voter.UID)
	c.Assert(err, qt.IsNil)
	_, err = ballots.Cast(expired.ID, voter.Secret, []uint32{0})
	c.Assert(err, qt.IsNil)

	dm := NewDeadlineMonitor(stg, eng, time.Hour)
	dm.checkDeadlines()

	got, err := elections.Election(expired.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.ElectionStatusClosed)
	c.Assert(got.Tallied, qt.IsTrue)
	c.Assert(got.Candidates[0].VoteCount, qt.Equals, uint64(1))

	got, err = elections.Election(open.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.ElectionStatusVotingOpen)
	c.Assert(got.Tallied, qt.IsFalse)
}

func TestDeadlineMonitorStartStop(t *testing.T) {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))
	dm := NewDeadlineMonitor(stg, engine.New(), 10*time.Millisecond)

	ctx := context.Background()
	c.Assert(dm.Start(ctx), qt.IsNil)
	c.Assert(dm.Start(ctx), qt.IsNotNil)
	dm.Stop()
	c.Assert(dm.Start(ctx), qt.IsNil)
	dm.Stop()
}
