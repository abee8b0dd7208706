/*
scheduler.go - Automated month-end carryover

PURPOSE:
  Periodically closes the month that has just ended: every user's balance
  is evaluated as of that month's last day and the carryover is stored as
  the opening balance of the current month. Balances never apply carryover
  on their own; this is the only writer besides POST /api/admin/carryover.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Always targets the previous month, so a month is closed only once it
    is complete, and a server that was down on the 1st catches up later
  - Skips users whose current month already has an opening balance
  - A manual close through the API overwrites

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewCarryoverScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CloseMonth endpoint (manual close)
  - balance/balance.go: Carryover
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warp/payroll-engine/calendar"
)

// CarryoverScheduler handles automated month-end carryover.
type CarryoverScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCarryoverScheduler creates a new scheduler.
func NewCarryoverScheduler(handler *Handler) *CarryoverScheduler {
	return &CarryoverScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (cs *CarryoverScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Info().Msg("carryover scheduler disabled")
		return
	}
	if cs.ticker != nil {
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.stop = make(chan struct{})
	cs.wg.Add(1)

	go cs.run(cs.ticker, cs.stop)

	log.Info().Dur("interval", cs.CheckInterval).Msg("carryover scheduler started")
}

// Stop stops the scheduler and waits for a running check to finish.
func (cs *CarryoverScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		cs.ticker = nil
		log.Info().Msg("carryover scheduler stopped")
	}
}

func (cs *CarryoverScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer cs.wg.Done()

	// Run immediately on start
	cs.checkAndProcess()

	for {
		select {
		case <-ticker.C:
			cs.checkAndProcess()
		case <-stop:
			return
		}
	}
}

// checkAndProcess closes the previous month for users that have no opening
// for the current one yet. It returns how many users were processed.
func (cs *CarryoverScheduler) checkAndProcess() int {
	today := calendar.FromTime(cs.Handler.Now())
	monthEnd := calendar.PeriodFor(today).PreviousMonth().End

	processed, skipped, err := cs.Handler.closeMonth(context.Background(), monthEnd, false)
	if err != nil {
		log.Error().Err(err).Str("month_end", monthEnd.String()).Int("processed", processed).Msg("carryover failed")
		return processed
	}
	if processed > 0 {
		log.Info().Str("month_end", monthEnd.String()).Int("processed", processed).Int("skipped", skipped).Msg("carryover completed")
	} else {
		log.Debug().Str("month_end", monthEnd.String()).Int("skipped", skipped).Msg("month already closed")
	}
	return processed
}

// RunNow triggers an immediate check (for testing/admin).
func (cs *CarryoverScheduler) RunNow() int {
	return cs.checkAndProcess()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (cs *CarryoverScheduler) GetNextRunTime() time.Time {
	return cs.Handler.Now().Add(cs.CheckInterval)
}
