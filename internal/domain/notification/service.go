package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estatebot/internal/pkg/clock"
)

// AdminDirectory tells the inbox who receives admin events.
type AdminDirectory interface {
	AdminIDs() []int64
}

type Service struct {
	repo   Repository
	admins AdminDirectory
	clock  clock.Clock
}

func NewService(repo Repository, admins AdminDirectory, clk clock.Clock) *Service {
	return &Service{repo: repo, admins: admins, clock: clk}
}

// Publish stores the event in each recipient's inbox. It makes Service a
// Publisher so it can sit next to the broker in a Multi.
func (s *Service) Publish(ctx context.Context, e Event) error {
	var recipients []int64
	if e.ToAdmins {
		if s.admins != nil {
			recipients = s.admins.AdminIDs()
		}
	} else if e.UserID != 0 {
		recipients = []int64{e.UserID}
	}
	if len(recipients) == 0 {
		return nil
	}

	var data string
	if len(e.Payload) > 0 {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		data = string(raw)
	}

	items := make([]Notification, 0, len(recipients))
	for _, id := range recipients {
		items = append(items, Notification{
			UserID:    id,
			EventID:   e.ID,
			Type:      e.Type,
			Data:      data,
			CreatedAt: e.OccurredAt,
		})
	}
	return s.repo.CreateBatch(ctx, items)
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	ok, err := s.repo.MarkAsRead(ctx, id, userID, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID, s.clock.Now())
}

// Cleanup removes inbox entries older than keep.
func (s *Service) Cleanup(ctx context.Context, keep time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, s.clock.Now().Add(-keep))
}
