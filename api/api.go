// Package api exposes the election system over HTTP: election lifecycle,
// voter registration, vote casting and the two-tier vote verification
// lookups, plus an operational log viewer.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/voteguard/voteguard-node/ballot"
	"github.com/voteguard/voteguard-node/election"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/tally"
)

const (
	maxRequestBodyLog = 512 // Maximum length of request body to log
	defaultPageLimit  = 20
	maxPageLimit      = 100
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host      string
	Port      int
	Elections *election.Service
	Ballots   *ballot.Service
	Tally     *tally.Orchestrator
}

// API type represents the API HTTP server.
type API struct {
	router    *chi.Mux
	elections *election.Service
	ballots   *ballot.Service
	tally     *tally.Orchestrator
}

// New creates a new API instance with the given configuration and starts the
// HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Elections == nil || conf.Ballots == nil || conf.Tally == nil {
		return nil, fmt.Errorf("missing service instances")
	}
	a := &API{
		elections: conf.Elections,
		ballots:   conf.Ballots,
		tally:     conf.Tally,
	}
	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// NewRouterOnly builds an API without binding a listener. Used by tests that
// drive the router through httptest.
func NewRouterOnly(conf *APIConfig) (*API, error) {
	if conf == nil || conf.Elections == nil || conf.Ballots == nil || conf.Tally == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	a := &API{
		elections: conf.Elections,
		ballots:   conf.Ballots,
		tally:     conf.Tally,
	}
	a.initRouter()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the HTTP handlers for the API endpoints.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	// election endpoints
	log.Infow("register handler", "endpoint", ElectionsEndpoint, "method", "POST")
	a.router.Post(ElectionsEndpoint, a.newElection)
	log.Infow("register handler", "endpoint", ElectionsEndpoint, "method", "GET")
	a.router.Get(ElectionsEndpoint, a.electionList)
	log.Infow("register handler", "endpoint", ElectionEndpoint, "method", "GET")
	a.router.Get(ElectionEndpoint, a.electionDetail)
	log.Infow("register handler", "endpoint", ElectionCloseEndpoint, "method", "POST")
	a.router.Post(ElectionCloseEndpoint, a.closeElection)
	log.Infow("register handler", "endpoint", ElectionTallyEndpoint, "method", "POST")
	a.router.Post(ElectionTallyEndpoint, a.tallyElection)
	log.Infow("register handler", "endpoint", ElectionRegistrationsEndpoint, "method", "POST")
	a.router.Post(ElectionRegistrationsEndpoint, a.registerVoter)
	log.Infow("register handler", "endpoint", ElectionRegistrationsEndpoint, "method", "GET")
	a.router.Get(ElectionRegistrationsEndpoint, a.registrationList)
	log.Infow("register handler", "endpoint", ElectionBallotsEndpoint, "method", "GET")
	a.router.Get(ElectionBallotsEndpoint, a.ballotList)
	// voter endpoints
	log.Infow("register handler", "endpoint", VotersEndpoint, "method", "POST")
	a.router.Post(VotersEndpoint, a.newVoter)
	// vote endpoints
	log.Infow("register handler", "endpoint", VotesEndpoint, "method", "POST")
	a.router.Post(VotesEndpoint, a.castVote)
	log.Infow("register handler", "endpoint", VoteVerifyEndpoint, "method", "POST")
	a.router.Post(VoteVerifyEndpoint, a.verifyVote)
	log.Infow("register handler", "endpoint", VoteDecodeEndpoint, "method", "POST")
	a.router.Post(VoteDecodeEndpoint, a.decodeVote)
	// log viewer
	log.Infow("register handler", "endpoint", LogsEndpoint, "method", "GET")
	a.router.Get(LogsEndpoint, a.recentLogs)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(loggingMiddleware(maxRequestBodyLog))
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}
