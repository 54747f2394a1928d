package api

import (
	"encoding/json"
	"net/http"

	"github.com/voteguard/voteguard-node/election"
)

// newElection creates a new election and runs its key ceremony
// POST /elections
func (a *API) newElection(w http.ResponseWriter, r *http.Request) {
	req := &ElectionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	elec, err := a.elections.CreateElection(election.CreateParams{
		Name:           req.Name,
		CandidateNames: req.Candidates,
		MaxSelections:  req.MaxSelections,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		NumGuardians:   req.NumGuardians,
		Quorum:         req.Quorum,
	})
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, elec)
}

// electionList returns a page of elections, newest first
// GET /elections?page=&limit=
func (a *API) electionList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, PageQueryParam, 1)
	if err != nil || page < 1 {
		ErrMalformedParam.Withf("invalid page").Write(w)
		return
	}
	limit, err := queryInt(r, LimitQueryParam, defaultPageLimit)
	if err != nil || limit < 1 || limit > maxPageLimit {
		ErrMalformedParam.Withf("invalid limit, must be 1-%d", maxPageLimit).Write(w)
		return
	}
	elections, err := a.elections.ListElections()
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	total := len(elections)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := min(start+limit, total)
	httpWriteJSON(w, &ElectionList{
		Elections: elections[start:end],
		Page:      page,
		Limit:     limit,
		Total:     total,
	})
}

// electionDetail returns an election with candidates and current totals
// GET /elections/{electionId}
func (a *API) electionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := urlElectionID(w, r)
	if !ok {
		return
	}
	elec, err := a.elections.Election(id)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, elec)
}

// closeElection ends the voting phase
// POST /elections/{electionId}/close
func (a *API) closeElection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlElectionID(w, r)
	if !ok {
		return
	}
	elec, err := a.elections.CloseVoting(id)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, elec)
}

// tallyElection runs the homomorphic tally and threshold decryption
// POST /elections/{electionId}/tally
func (a *API) tallyElection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlElectionID(w, r)
	if !ok {
		return
	}
	elec, err := a.tally.Run(id)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, elec)
}

// registrationList lists the registrants of an election
// GET /elections/{electionId}/registrations
func (a *API) registrationList(w http.ResponseWriter, r *http.Request) {
	id, ok := urlElectionID(w, r)
	if !ok {
		return
	}
	regs, err := a.elections.Registrations(id)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, &RegistrationList{Registrations: regs, Total: len(regs)})
}

// ballotList lists the ballots cast in an election, voter identity included
// GET /elections/{electionId}/ballots
func (a *API) ballotList(w http.ResponseWriter, r *http.Request) {
	id, ok := urlElectionID(w, r)
	if !ok {
		return
	}
	ballots, err := a.ballots.Ballots(id)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, &BallotList{Ballots: ballots, Total: len(ballots)})
}
