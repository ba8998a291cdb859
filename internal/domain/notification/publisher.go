package notification

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Emit publishes and only logs failures: a lost notification never undoes
// the business operation that caused it.
func Emit(ctx context.Context, p Publisher, log logrus.FieldLogger, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil && log != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event_id":   e.ID,
			"event_type": e.Type,
			"user_id":    e.UserID,
		}).Warn("publish event failed")
	}
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.WithFields(logrus.Fields{
		"event_id":   e.ID,
		"event_type": e.Type,
		"user_id":    e.UserID,
		"to_admins":  e.ToAdmins,
		"payload":    e.Payload,
	}).Info("event")
	return nil
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
