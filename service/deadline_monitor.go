package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/storage"
	"github.com/voteguard/voteguard-node/tally"
	"github.com/voteguard/voteguard-node/types"
)

// DeadlineMonitor is a service that periodically scans for elections whose
// voting window has expired and runs their tally. Elections tallied by hand
// before the deadline are skipped naturally by the status check.
type DeadlineMonitor struct {
	stg      *storage.Storage
	tally    *tally.Orchestrator
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
}

// NewDeadlineMonitor creates a new DeadlineMonitor service.
func NewDeadlineMonitor(stg *storage.Storage, eng engine.Engine, interval time.Duration) *DeadlineMonitor {
	return &DeadlineMonitor{
		stg:      stg,
		tally:    tally.New(stg, eng),
		interval: interval,
	}
}

// Start begins monitoring for expired elections. It returns an error if the
// service is already running.
func (dm *DeadlineMonitor) Start(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.cancel != nil {
		return fmt.Errorf("service already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	dm.cancel = cancel

	go dm.monitorDeadlines(ctx)
	return nil
}

// Stop halts the monitoring service.
func (dm *DeadlineMonitor) Stop() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.cancel != nil {
		dm.cancel()
		dm.cancel = nil
	}
}

func (dm *DeadlineMonitor) monitorDeadlines(ctx context.Context) {
	ticker := time.NewTicker(dm.interval)
	defer ticker.Stop()
	log.Infow("deadline monitor started", "interval", dm.interval.String())
	for {
		select {
		case <-ctx.Done():
			log.Infow("deadline monitor stopped")
			return
		case <-ticker.C:
			dm.checkDeadlines()
		}
	}
}

// checkDeadlines tallies every open election whose end date has passed.
func (dm *DeadlineMonitor) checkDeadlines() {
	ids, err := dm.stg.ListElections()
	if err != nil {
		log.Errorw(err, "deadline monitor could not list elections")
		return
	}
	now := time.Now().UTC()
	for _, id := range ids {
		elec, err := dm.stg.Election(id)
		if err != nil {
			log.Warnw("deadline monitor could not load election", "id", id.String(), "error", err)
			continue
		}
		if elec.Status != types.ElectionStatusVotingOpen || now.Before(elec.EndDate) {
			continue
		}
		log.Infow("voting window expired, running tally",
			"election", elec.ID.String(), "endDate", elec.EndDate)
		if _, err := dm.tally.Run(elec.ID); err != nil {
			// a concurrent manual tally loses the status race, that's fine
			if errors.Is(err, types.ErrInvalidState) {
				continue
			}
			log.Errorw(err, "automatic tally failed")
		}
	}
}
