// Package notificationtest records published events for assertions.
package notificationtest

import (
	"context"
	"sync"

	"estatebot/internal/domain/notification"
)

type Recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *Recorder) Publish(_ context.Context, e notification.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []notification.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Event(nil), r.events...)
}

// OfType returns the recorded events of one type, oldest first.
func (r *Recorder) OfType(t notification.Type) []notification.Event {
	var out []notification.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
