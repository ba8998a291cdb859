package property

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"estatebot/internal/database"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/subscription"
	"estatebot/internal/pkg/clock"
)

// PublishGate decides whether a user may list right now.
type PublishGate interface {
	CanPublish(ctx context.Context, userID int64) (subscription.Decision, error)
}

type Service struct {
	repo      Repository
	gate      PublishGate
	moderator *Moderator
	clock     clock.Clock
	events    notification.Publisher
	log       logrus.FieldLogger
}

func NewService(repo Repository, gate PublishGate, moderator *Moderator, clk clock.Clock, events notification.Publisher, log logrus.FieldLogger) *Service {
	if moderator == nil {
		moderator = DefaultModerator()
	}
	return &Service{
		repo:      repo,
		gate:      gate,
		moderator: moderator,
		clock:     clk,
		events:    events,
		log:       log,
	}
}

// Create publishes a listing for an owner who passes the publish gate.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateRequest) (*Property, reason.Code, error) {
	d, err := s.gate.CanPublish(ctx, ownerID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("can publish: %w", err)
	}
	if !d.Allowed {
		return nil, d.Reason, nil
	}
	if !req.Type.Valid() {
		return nil, reason.InvalidListing, nil
	}
	if req.AvailableFrom != nil && req.AvailableTo != nil && !req.AvailableFrom.Before(*req.AvailableTo) {
		return nil, reason.InvalidDateRange, nil
	}

	now := s.clock.Now()
	p := &Property{
		OwnerID:       ownerID,
		Type:          req.Type,
		District:      strings.TrimSpace(req.District),
		Address:       strings.TrimSpace(req.Address),
		Price:         req.Price,
		Currency:      strings.ToUpper(req.Currency),
		Rooms:         req.Rooms,
		Area:          req.Area,
		Floor:         req.Floor,
		TotalFloors:   req.TotalFloors,
		Description:   strings.TrimSpace(req.Description),
		IsDailyRent:   req.IsDailyRent,
		AvailableFrom: utcPtr(req.AvailableFrom),
		AvailableTo:   utcPtr(req.AvailableTo),
		Status:        StatusActive,
		CreatedAt:     now,
	}
	if p.Currency == "" {
		p.Currency = "UZS"
	}

	today, err := s.repo.CountCreatedSince(ctx, ownerID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, reason.OK, fmt.Errorf("count recent listings: %w", err)
	}
	p.ModerationScore = s.moderator.Score(p, today)
	if !s.moderator.Passes(p.ModerationScore) {
		p.Status = StatusSuspicious
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, reason.OK, fmt.Errorf("create property: %w", err)
	}

	if p.Status == StatusSuspicious {
		s.log.WithFields(logrus.Fields{
			"property_id": p.ID,
			"owner_id":    ownerID,
			"score":       p.ModerationScore,
		}).Warn("listing flagged by auto-moderation")
		notification.Emit(ctx, s.events, s.log, notification.ForAdmins(
			notification.TypeListingFlagged, ownerID, now,
			map[string]any{"property_id": p.ID, "score": p.ModerationScore},
		))
	}
	return p, reason.OK, nil
}

// Get returns nil for unknown ids.
func (s *Service) Get(ctx context.Context, id int64) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, f Filter) ([]Property, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.Search(ctx, f)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Property, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Archive hides a listing. Only its owner or an admin may do it.
func (s *Service) Archive(ctx context.Context, id, actorID int64, isAdmin bool) (reason.Code, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return reason.OK, err
	}
	if p == nil {
		return reason.PropertyNotFound, nil
	}
	if p.OwnerID != actorID && !isAdmin {
		return reason.Forbidden, nil
	}
	if p.Status == StatusArchived {
		return reason.OK, nil
	}
	return reason.OK, s.repo.UpdateStatus(ctx, id, StatusArchived)
}

// Approve clears the suspicious flag (admin review).
func (s *Service) Approve(ctx context.Context, id int64) (reason.Code, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return reason.OK, err
	}
	if p == nil {
		return reason.PropertyNotFound, nil
	}
	if p.Status != StatusSuspicious {
		return reason.InvalidStatusTransition, nil
	}
	return reason.OK, s.repo.UpdateStatus(ctx, id, StatusActive)
}

func (s *Service) AddFavorite(ctx context.Context, userID, propertyID int64) (reason.Code, error) {
	p, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		return reason.OK, err
	}
	if p == nil {
		return reason.PropertyNotFound, nil
	}

	err = s.repo.AddFavorite(ctx, &Favorite{UserID: userID, PropertyID: propertyID, CreatedAt: s.clock.Now()})
	if database.IsUniqueViolation(err) {
		return reason.OK, nil
	}
	return reason.OK, err
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, propertyID int64) (reason.Code, error) {
	ok, err := s.repo.RemoveFavorite(ctx, userID, propertyID)
	if err != nil {
		return reason.OK, err
	}
	if !ok {
		return reason.NotFound, nil
	}
	return reason.OK, nil
}

func (s *Service) ListFavorites(ctx context.Context, userID int64) ([]Property, error) {
	return s.repo.ListFavorites(ctx, userID)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
