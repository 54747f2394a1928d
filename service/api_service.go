// Package service wires the domain services into long-running node
// components: the HTTP API server and the deadline monitor that tallies
// elections past their voting window.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/voteguard/voteguard-node/api"
	"github.com/voteguard/voteguard-node/ballot"
	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/election"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/storage"
	"github.com/voteguard/voteguard-node/tally"
)

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	API    *api.API
	mu     sync.Mutex
	cancel context.CancelFunc

	host      string
	port      int
	elections *election.Service
	ballots   *ballot.Service
	tally     *tally.Orchestrator
}

// NewAPI creates a new APIService instance over a shared storage and engine.
func NewAPI(stg *storage.Storage, eng engine.Engine, host string, port int, disableLogging bool) *APIService {
	if disableLogging {
		api.DisabledLogging = disableLogging
		log.Debugw("API logging is disabled")
	}
	return &APIService{
		host:      host,
		port:      port,
		elections: election.NewService(stg, eng),
		ballots:   ballot.NewService(stg, eng),
		tally:     tally.New(stg, eng),
	}
}

// Start begins the API server. It returns an error if the service is already
// running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}
	_, as.cancel = context.WithCancel(ctx)

	var err error
	as.API, err = api.New(&api.APIConfig{
		Host:      as.host,
		Port:      as.port,
		Elections: as.elections,
		Ballots:   as.ballots,
		Tally:     as.tally,
	})
	if err != nil {
		as.cancel = nil
		return fmt.Errorf("failed to start API server: %w", err)
	}
	return nil
}

// Stop halts the API server.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
	}
}

// HostPort returns the host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
