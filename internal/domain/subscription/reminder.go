package subscription

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"estatebot/internal/domain/notification"
)

// DefaultReminderDays are the days-left marks at which users are reminded.
var DefaultReminderDays = []int{7, 3, 1}

// ReminderJob emits subscription.expiring events. It never deactivates
// anything: expiry stays with the lazy check in CanPublish. Run it once a
// day so each interval crosses each mark exactly once.
type ReminderJob struct {
	service *Service
	days    []int
}

func NewReminderJob(service *Service, days []int) *ReminderJob {
	if len(days) == 0 {
		days = DefaultReminderDays
	}
	return &ReminderJob{service: service, days: days}
}

func (j *ReminderJob) Name() string { return "subscription-reminders" }

func (j *ReminderJob) Run(ctx context.Context) error {
	sent := 0
	for _, d := range j.days {
		list, err := j.service.ExpiringIn(ctx, d)
		if err != nil {
			return fmt.Errorf("list expiring in %d days: %w", d, err)
		}
		for i := range list {
			iv := &list[i]
			notification.Emit(ctx, j.service.events, j.service.log, notification.ForUser(
				notification.TypeSubscriptionExpiring, iv.UserID, j.service.clock.Now(),
				map[string]any{
					"interval_id": iv.ID,
					"role":        iv.Role,
					"days_left":   d,
					"ends_at":     iv.EndsAt,
				},
			))
			sent++
		}
	}

	j.service.log.WithFields(logrus.Fields{"reminders": sent}).Info("subscription reminders sent")
	return nil
}
