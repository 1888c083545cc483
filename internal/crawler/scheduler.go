package crawler

import (
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler manages scheduled re-ingestion jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new crawl scheduler
func NewScheduler() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{scheduler: s}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// ScheduleCron schedules a job to run on the given cron expression.
func (s *Scheduler) ScheduleCron(tag, cronExpr string, job func() error) error {
	_, err := s.scheduler.Cron(cronExpr).Tag(tag).Do(job)
	return err
}
