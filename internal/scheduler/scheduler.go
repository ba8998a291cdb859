// Package scheduler runs background jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	log     logrus.FieldLogger
	timeout time.Duration

	mu   sync.Mutex
	ctx  context.Context
	jobs map[string]Job
}

// New builds a scheduler in UTC. Overlapping runs of the same job are
// skipped and panics are recovered.
func New(log logrus.FieldLogger, timeout time.Duration) *Scheduler {
	cronLog := cron.PrintfLogger(log)
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log:     log,
		timeout: timeout,
		ctx:     context.Background(),
		jobs:    make(map[string]Job),
	}
}

// Add registers job under a standard 5-field cron spec or a descriptor such
// as "@daily".
func (s *Scheduler) Add(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}

	s.mu.Lock()
	s.jobs[job.Name()] = job
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"job": job.Name(), "spec": spec}).Info("job scheduled")
	return nil
}

// Start begins firing jobs. Runs derive their context from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
}

// RunNow runs a registered job synchronously.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	log := s.log.WithField("job", job.Name())
	if err := job.Run(ctx); err != nil {
		log.WithError(err).Error("job failed")
		return err
	}
	log.WithField("duration", time.Since(start).String()).Debug("job finished")
	return nil
}
