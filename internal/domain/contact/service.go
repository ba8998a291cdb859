package contact

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"estatebot/internal/database"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/policy"
	"estatebot/internal/domain/property"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/clock"
)

type Service struct {
	repo       Repository
	users      user.Repository
	properties property.Repository
	policy     *policy.Policy
	clock      clock.Clock
	events     notification.Publisher
	log        logrus.FieldLogger
}

func NewService(
	repo Repository,
	users user.Repository,
	properties property.Repository,
	pol *policy.Policy,
	clk clock.Clock,
	events notification.Publisher,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		properties: properties,
		policy:     pol,
		clock:      clk,
		events:     events,
		log:        log,
	}
}

// CanShowContact reveals the owner's contact unless the owner's role is
// restricted. Admins and requesters with an approved request always see it.
func (s *Service) CanShowContact(ctx context.Context, ownerID, requesterID int64) (*Visibility, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return &Visibility{Reason: reason.TargetNotFound}, nil
	}

	show := !s.policy.IsContactRestricted(owner.Role) ||
		s.policy.IsAdmin(requesterID) ||
		ownerID == requesterID
	if !show {
		show, err = s.repo.HasApproved(ctx, requesterID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("check approved request: %w", err)
		}
	}

	if !show {
		return &Visibility{
			Reason:  reason.ContactRestricted,
			Message: fmt.Sprintf("Contact details are shared through the administrator: %s", s.policy.AdminContact),
		}, nil
	}
	return &Visibility{Show: true, Contact: owner.Contact()}, nil
}

// RequestContact files a pending request for the admins.
func (s *Service) RequestContact(ctx context.Context, requesterID, targetID int64, propertyID *int64) (*Request, reason.Code, error) {
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("get requester: %w", err)
	}
	if requester == nil {
		return nil, reason.UserNotFound, nil
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("get target: %w", err)
	}
	if target == nil {
		return nil, reason.TargetNotFound, nil
	}

	if propertyID != nil {
		p, err := s.properties.GetByID(ctx, *propertyID)
		if err != nil {
			return nil, reason.OK, fmt.Errorf("get property: %w", err)
		}
		if p == nil {
			return nil, reason.PropertyNotFound, nil
		}
	}

	existing, err := s.repo.FindPending(ctx, requesterID, targetID, propertyID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("find pending: %w", err)
	}
	if existing != nil {
		return nil, reason.AlreadyPending, nil
	}

	req := &Request{
		RequesterID: requesterID,
		TargetID:    targetID,
		PropertyID:  propertyID,
		Status:      StatusPending,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		// lost a race with an identical request
		if database.IsUniqueViolation(err) {
			return nil, reason.AlreadyPending, nil
		}
		return nil, reason.OK, fmt.Errorf("create contact request: %w", err)
	}

	payload := map[string]any{
		"request_id":   req.ID,
		"requester_id": requesterID,
		"target_id":    targetID,
	}
	if propertyID != nil {
		payload["property_id"] = *propertyID
	}
	notification.Emit(ctx, s.events, s.log, notification.ForAdmins(
		notification.TypeContactRequested, requesterID, req.CreatedAt, payload,
	))
	return req, reason.OK, nil
}

// Approve resolves a pending request and returns the target's contact. A
// request whose target no longer exists stays pending.
func (s *Service) Approve(ctx context.Context, requestID, adminID int64) (*Approval, reason.Code, error) {
	var contact *user.Contact
	req, code, err := s.resolve(ctx, requestID, adminID, StatusApproved, func(req *Request) (reason.Code, error) {
		target, err := s.users.GetByID(ctx, req.TargetID)
		if err != nil {
			return reason.OK, fmt.Errorf("get target: %w", err)
		}
		if target == nil {
			return reason.TargetNotFound, nil
		}
		contact = target.Contact()
		return reason.OK, nil
	})
	if err != nil || code != reason.OK {
		return nil, code, err
	}

	notification.Emit(ctx, s.events, s.log, notification.ForUser(
		notification.TypeContactApproved, req.RequesterID, s.clock.Now(),
		map[string]any{
			"request_id": req.ID,
			"target_id":  contact.UserID,
			"username":   contact.Username,
			"phone":      contact.Phone,
		},
	))
	return &Approval{Request: req, Contact: contact}, reason.OK, nil
}

func (s *Service) Reject(ctx context.Context, requestID, adminID int64) (*Request, reason.Code, error) {
	req, code, err := s.resolve(ctx, requestID, adminID, StatusRejected, nil)
	if err != nil || code != reason.OK {
		return nil, code, err
	}

	notification.Emit(ctx, s.events, s.log, notification.ForUser(
		notification.TypeContactRejected, req.RequesterID, s.clock.Now(),
		map[string]any{"request_id": req.ID, "target_id": req.TargetID},
	))
	return req, reason.OK, nil
}

// resolve moves a pending request to status. check, when set, runs against
// the pending request before anything is written.
func (s *Service) resolve(ctx context.Context, requestID, adminID int64, status Status, check func(*Request) (reason.Code, error)) (*Request, reason.Code, error) {
	if !s.policy.IsAdmin(adminID) {
		return nil, reason.Forbidden, nil
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("get contact request: %w", err)
	}
	if req == nil {
		return nil, reason.NotFound, nil
	}
	if req.Status != StatusPending {
		return nil, reason.AlreadyProcessed, nil
	}
	if check != nil {
		if code, err := check(req); err != nil || code != reason.OK {
			return nil, code, err
		}
	}

	now := s.clock.Now()
	ok, err := s.repo.Resolve(ctx, requestID, status, adminID, now)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("resolve contact request: %w", err)
	}
	if !ok {
		return nil, reason.AlreadyProcessed, nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"admin_id":   adminID,
		"status":     status,
	}).Info("contact request resolved")

	req.Status = status
	req.ProcessedBy = &adminID
	req.ProcessedAt = &now
	return req, reason.OK, nil
}

func (s *Service) ListPending(ctx context.Context, limit int) ([]Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListPending(ctx, limit)
}

func (s *Service) ListMine(ctx context.Context, requesterID int64) ([]Request, error) {
	return s.repo.ListByRequester(ctx, requesterID)
}
