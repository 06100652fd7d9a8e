package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshFunc is the operation the scheduler drives on its period.
type RefreshFunc func(ctx context.Context) error

// Scheduler invokes the refresh operation on a fixed interval. Overlapping
// runs are skipped so a single refresh is in flight at a time.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	refresh RefreshFunc
}

// NewScheduler creates a new Scheduler bound to ctx; cancelling ctx aborts
// any in-flight refresh, including its retry sleeps.
func NewScheduler(ctx context.Context, refresh RefreshFunc) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		refresh: refresh,
	}
}

// Register schedules the refresh to run every interval.
func (s *Scheduler) Register(interval time.Duration) {
	s.cron.Schedule(cron.Every(interval), cron.FuncJob(s.run))
}

func (s *Scheduler) run() {
	if err := s.refresh(s.ctx); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		log.Printf("[ERROR] scheduled refresh: %v", err)
	}
}

// RunNow executes one refresh immediately (for startup and manual triggers).
func (s *Scheduler) RunNow() { s.run() }

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
