/*
scheduler.go - Automated payday scheduler

PURPOSE:
  Periodically checks the calendar and runs payday once per date, so
  employees are paid without anyone calling POST /api/payday.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each check pays the current date through Handler.RunPayday
  - A date that already ran successfully is skipped on later checks
  - Dates with no matching employees still count as run

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: false)

USAGE:
  scheduler := NewPaydayScheduler(handler)
  scheduler.Enabled = true
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunPayday (shared with POST /api/payday)
  - payroll/payday.go: PaydayTransaction
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// PaydayScheduler runs payday automatically for each new calendar date.
type PaydayScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	// Now is the clock; tests replace it.
	Now func() time.Time

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun payroll.Date
}

// NewPaydayScheduler creates a new scheduler.
func NewPaydayScheduler(handler *Handler) *PaydayScheduler {
	return &PaydayScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (ps *PaydayScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	logger := ps.Handler.Logger
	if !ps.Enabled {
		logger.Info("payday scheduler disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)

	go ps.run(ps.ticker.C, ps.stop)

	logger.Info("payday scheduler started", "check_interval", ps.CheckInterval.String())
}

// Stop stops the scheduler and waits for an in-flight check.
func (ps *PaydayScheduler) Stop() {
	ps.mu.Lock()
	ticker, stop := ps.ticker, ps.stop
	ps.ticker = nil
	ps.mu.Unlock()

	if ticker == nil {
		return
	}

	close(stop)
	ps.wg.Wait()
	ticker.Stop()
	ps.Handler.Logger.Info("payday scheduler stopped")
}

// run owns tick and stop for its whole lifetime; Stop never touches them
// until run has returned.
func (ps *PaydayScheduler) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer ps.wg.Done()

	// Run immediately on start
	ps.checkAndProcess()

	for {
		select {
		case <-tick:
			ps.checkAndProcess()
		case <-stop:
			return
		}
	}
}

// checkAndProcess pays today unless today already ran. It reports whether
// a run happened.
func (ps *PaydayScheduler) checkAndProcess() bool {
	today := payroll.DateOf(ps.Now())

	ps.mu.Lock()
	if ps.lastRun == today {
		ps.mu.Unlock()
		return false
	}
	ps.mu.Unlock()

	ctx := context.Background()
	logger := ps.Handler.Logger

	tx, err := ps.Handler.RunPayday(ctx, today)
	if err != nil {
		logger.ErrorContext(ctx, "scheduled payday failed", "date", today.String(), "error", err)
		return false
	}

	ps.mu.Lock()
	ps.lastRun = today
	ps.mu.Unlock()

	logger.InfoContext(ctx, "scheduled payday processed",
		"date", today.String(),
		"run_id", tx.RunID,
		"paychecks", len(tx.Paychecks()),
	)
	return true
}

// RunNow triggers an immediate check (for testing/admin).
func (ps *PaydayScheduler) RunNow() bool {
	return ps.checkAndProcess()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ps *PaydayScheduler) GetNextRunTime() time.Time {
	return ps.Now().Add(ps.CheckInterval)
}
