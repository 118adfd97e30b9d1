// Package scheduler runs BNPL reconciliation on a cron schedule so that
// read paths never have to advance plans themselves.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/logging"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule reconciles once a day at midnight.
const DefaultSchedule = "@daily"

// Reconciler is the job the scheduler drives.
type Reconciler interface {
	ReconcileAll(ctx context.Context, today time.Time) (bnpl.Summary, error)
}

// Status describes the most recent run.
type Status struct {
	Schedule  string       `json:"schedule"`
	LastRunAt time.Time    `json:"last_run_at,omitempty"`
	Runs      int          `json:"runs"`
	Last      bnpl.Summary `json:"last"`
	LastError string       `json:"last_error,omitempty"`
	NextRunAt time.Time    `json:"next_run_at,omitempty"`
}

// Scheduler wraps a cron runner with a single reconciliation job.
type Scheduler struct {
	cron     *cron.Cron
	entry    cron.EntryID
	schedule string
	rec      Reconciler
	now      func() time.Time
	logger   logging.Logger

	mu     sync.Mutex
	status Status
}

// New registers the reconciliation job under spec (standard five-field cron
// or a descriptor such as @daily). now may be nil to use the wall clock.
func New(spec string, rec Reconciler, now func() time.Time, logger logging.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Scheduler{
		cron:     cron.New(),
		schedule: spec,
		rec:      rec,
		now:      now,
		logger:   logger.WithField("component", "scheduler"),
		status:   Status{Schedule: spec},
	}

	id, err := s.cron.AddFunc(spec, func() {
		_, _ = s.RunOnce(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Start begins running the job in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Reconciliation scheduled", logging.F("schedule", s.schedule))
}

// Stop halts the scheduler and returns a context that is done once any
// running job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce reconciles every plan against today's date and records the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (bnpl.Summary, error) {
	now := s.now()
	today := dateutils.Today(now)

	summary, err := s.rec.ReconcileAll(ctx, today)

	s.mu.Lock()
	s.status.LastRunAt = now
	s.status.Runs++
	s.status.Last = summary
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("Scheduled reconciliation failed",
			logging.F(logging.FieldToday, dateutils.ToISODate(today)))
		return summary, err
	}
	return summary, nil
}

// Status returns a copy of the latest run state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()

	st.NextRunAt = s.cron.Entry(s.entry).Next
	return st
}
