// Package jobs runs the background housekeeping of the console on cron
// schedules.
package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"caradmin/internal/pkg/metrics"
)

// Scheduler wraps a cron runner. Every job run is logged and counted.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log,
	}
}

// Add registers fn under name. An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, fn func() error) error {
	if spec == "" {
		s.log.Info("job_disabled", "job", name)
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.wrap(name, fn)); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job_scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) wrap(name string, fn func() error) func() {
	return func() {
		start := time.Now()
		err := fn()
		metrics.RecordJobRun(name, err == nil)
		if err != nil {
			s.log.Error("job_failed", "job", name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
			return
		}
		s.log.Debug("job_done", "job", name, "duration_ms", time.Since(start).Milliseconds())
	}
}

// Len is the number of scheduled jobs.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
