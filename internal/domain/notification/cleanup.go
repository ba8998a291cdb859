package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanupJob trims old inbox entries on a schedule.
type CleanupJob struct {
	service *Service
	keep    time.Duration
	log     logrus.FieldLogger
}

func NewCleanupJob(service *Service, keep time.Duration, log logrus.FieldLogger) *CleanupJob {
	return &CleanupJob{service: service, keep: keep, log: log}
}

func (j *CleanupJob) Name() string { return "notification-cleanup" }

func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.service.Cleanup(ctx, j.keep)
	if err != nil {
		return err
	}

	j.log.WithFields(logrus.Fields{
		"deleted":  deleted,
		"duration": time.Since(start).String(),
	}).Info("notification cleanup completed")
	return nil
}
