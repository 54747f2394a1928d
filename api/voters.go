package api

import (
	"encoding/json"
	"net/http"

	"github.com/voteguard/voteguard-node/log"
)

// newVoter creates a globally registered voter and returns the voter secret
// POST /voters
func (a *API) newVoter(w http.ResponseWriter, r *http.Request) {
	req := &VoterRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Name == "" {
		ErrMalformedBody.Withf("voter name is required").Write(w)
		return
	}
	voter, err := a.elections.CreateVoter(req.Name)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	log.Infow("voter created", "uid", voter.UID)
	httpWriteJSON(w, &VoterResponse{
		VoterUID:  voter.UID,
		Name:      voter.Name,
		Secret:    voter.Secret,
		CreatedAt: voter.CreatedAt,
	})
}

// registerVoter registers an existing voter for an election
// POST /elections/{electionId}/registrations
func (a *API) registerVoter(w http.ResponseWriter, r *http.Request) {
	id, ok := urlElectionID(w, r)
	if !ok {
		return
	}
	req := &RegistrationRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.VoterUID == "" {
		ErrMalformedBody.Withf("voterUid is required").Write(w)
		return
	}
	reg, err := a.elections.RegisterVoter(id, req.VoterUID)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, reg)
}
