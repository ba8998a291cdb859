package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"estatebot/internal/database"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/policy"
	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/clock"
)

// paid plans are counted in 30-day months
const paidMonth = 30 * day

// Service is the eligibility evaluator: publishing rights, role changes and
// the subscription ledger behind them.
type Service struct {
	repo   Repository
	policy *policy.Policy
	clock  clock.Clock
	events notification.Publisher
	log    logrus.FieldLogger
}

func NewService(repo Repository, pol *policy.Policy, clk clock.Clock, events notification.Publisher, log logrus.FieldLogger) *Service {
	return &Service{
		repo:   repo,
		policy: pol,
		clock:  clk,
		events: events,
		log:    log,
	}
}

// CanPublish allows non-premium roles unconditionally. Premium roles need an
// active interval that still covers now; an expired one is deactivated here.
func (s *Service) CanPublish(ctx context.Context, userID int64) (Decision, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return deny(reason.UserNotFound), nil
	}
	if !s.policy.IsPremium(u.Role) {
		return allow(), nil
	}

	iv, expired, err := s.current(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	switch {
	case expired:
		return deny(reason.SubscriptionExpired), nil
	case iv == nil:
		return deny(reason.NoActiveSubscription), nil
	}
	return allow(), nil
}

// CanChangeRole denies users whose role got locked on selection.
func (s *Service) CanChangeRole(ctx context.Context, userID int64) (Decision, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return deny(reason.UserNotFound), nil
	}
	return s.roleChange(u), nil
}

func (s *Service) roleChange(u *user.User) Decision {
	if u.RoleLocked && s.policy.LocksOnSelect(u.Role) {
		return deny(reason.RoleChangeLocked)
	}
	return allow()
}

// GrantFreePeriod opens the free interval of the user's current role and,
// for locking roles, locks the role for good. A user gets one free period.
func (s *Service) GrantFreePeriod(ctx context.Context, userID int64, role user.Role) (*Interval, reason.Code, error) {
	if !s.policy.Known(role) {
		return nil, reason.InvalidRole, nil
	}

	var granted *Interval
	err := s.repo.Transaction(ctx, func(r Repository) error {
		u, err := r.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return reason.Deny(reason.UserNotFound)
		}
		if u.Role != role {
			return reason.Deny(reason.RoleMismatch)
		}

		iv, code, err := s.grant(ctx, r, u, role)
		if err != nil {
			return err
		}
		if code != reason.OK {
			return reason.Deny(code)
		}
		granted = iv
		return nil
	})
	if code, err := reason.Split(err); code != reason.OK || err != nil {
		return nil, code, wrap("grant free period", err)
	}

	s.emitActivated(ctx, granted)
	return granted, reason.OK, nil
}

// grant runs inside a transaction that holds the user row.
func (s *Service) grant(ctx context.Context, r Repository, u *user.User, role user.Role) (*Interval, reason.Code, error) {
	now := s.clock.Now()

	active, err := r.GetActive(ctx, u.ID)
	if err != nil {
		return nil, reason.OK, err
	}
	if active != nil && !active.ExpiredAt(now) {
		return nil, reason.AlreadyActive, nil
	}

	days := s.policy.FreePeriodDays(role)
	if days <= 0 {
		return nil, reason.NoFreePeriod, nil
	}
	if u.FreePeriodUsed {
		return nil, reason.FreePeriodUsed, nil
	}

	if active != nil {
		if err := r.Deactivate(ctx, active.ID); err != nil {
			return nil, reason.OK, err
		}
	}

	iv := &Interval{
		UserID:   u.ID,
		Role:     role,
		StartsAt: now,
		EndsAt:   now.Add(time.Duration(days) * day),
		IsFree:   true,
		IsActive: true,
	}
	if err := r.Create(ctx, iv); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, reason.AlreadyActive, nil
		}
		return nil, reason.OK, err
	}

	u.FreePeriodUsed = true
	if s.policy.LocksOnSelect(role) {
		u.RoleLocked = true
	}
	if err := r.UpdateUser(ctx, u); err != nil {
		return nil, reason.OK, err
	}
	return iv, reason.OK, nil
}

// ActivatePaid replaces whatever interval is active with a paid one of
// months*30 days and moves the user to the paid role.
func (s *Service) ActivatePaid(ctx context.Context, req ActivateRequest) (*Interval, reason.Code, error) {
	if !s.policy.IsAdmin(req.ApprovedBy) {
		return nil, reason.Forbidden, nil
	}
	if !s.policy.Known(req.Role) {
		return nil, reason.InvalidRole, nil
	}
	if req.Months <= 0 {
		return nil, reason.InvalidPeriod, nil
	}

	now := s.clock.Now()
	var created *Interval
	err := s.repo.Transaction(ctx, func(r Repository) error {
		u, err := r.LockUser(ctx, req.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return reason.Deny(reason.UserNotFound)
		}

		if _, err := r.DeactivateAllForUser(ctx, u.ID); err != nil {
			return err
		}

		approver := req.ApprovedBy
		iv := &Interval{
			UserID:     u.ID,
			Role:       req.Role,
			StartsAt:   now,
			EndsAt:     now.Add(time.Duration(req.Months) * paidMonth),
			IsActive:   true,
			ApprovedBy: &approver,
		}
		if err := r.Create(ctx, iv); err != nil {
			return err
		}

		u.Role = req.Role
		if err := r.UpdateUser(ctx, u); err != nil {
			return err
		}
		created = iv
		return nil
	})
	if code, err := reason.Split(err); code != reason.OK || err != nil {
		return nil, code, wrap("activate paid", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     req.UserID,
		"role":        req.Role,
		"months":      req.Months,
		"approved_by": req.ApprovedBy,
	}).Info("paid subscription activated")
	s.emitActivated(ctx, created)
	return created, reason.OK, nil
}

// SelectRole sets the user's role and grants the role's free period in the
// same transaction. A missing free period is reported, not treated as a
// failure.
func (s *Service) SelectRole(ctx context.Context, userID int64, role user.Role) (*RoleSelection, reason.Code, error) {
	if !s.policy.Known(role) {
		return nil, reason.InvalidRole, nil
	}

	var sel RoleSelection
	err := s.repo.Transaction(ctx, func(r Repository) error {
		u, err := r.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return reason.Deny(reason.UserNotFound)
		}
		if d := s.roleChange(u); !d.Allowed {
			return reason.Deny(d.Reason)
		}

		u.Role = role
		if err := r.UpdateUser(ctx, u); err != nil {
			return err
		}
		sel.User = u

		if s.policy.FreePeriodDays(role) <= 0 {
			return nil
		}
		iv, code, err := s.grant(ctx, r, u, role)
		if err != nil {
			return err
		}
		sel.FreePeriod, sel.FreePeriodReason = iv, code
		return nil
	})
	if code, err := reason.Split(err); code != reason.OK || err != nil {
		return nil, code, wrap("select role", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"role":        role,
		"free_period": sel.FreePeriod != nil,
		"locked":      sel.User.RoleLocked,
	}).Info("role selected")
	if sel.FreePeriod != nil {
		s.emitActivated(ctx, sel.FreePeriod)
	}
	return &sel, reason.OK, nil
}

// Info reports the current interval and days left.
func (s *Service) Info(ctx context.Context, userID int64) (*Info, reason.Code, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, reason.OK, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, reason.UserNotFound, nil
	}

	iv, _, err := s.current(ctx, userID)
	if err != nil {
		return nil, reason.OK, err
	}

	info := &Info{
		Role:     u.Role,
		Required: s.policy.IsPremium(u.Role),
		Active:   iv != nil,
		Interval: iv,
	}
	if iv != nil {
		info.DaysLeft = iv.DaysLeft(s.clock.Now())
	}
	return info, reason.OK, nil
}

// History lists every interval the user ever had, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Interval, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ExpiringIn lists active intervals whose whole days left equal days.
func (s *Service) ExpiringIn(ctx context.Context, days int) ([]Interval, error) {
	from := s.clock.Now().Add(time.Duration(days) * day)
	return s.repo.ListActiveEndingBetween(ctx, from, from.Add(day))
}

// current returns the active interval still covering now. An interval that
// ran out is deactivated and reported as expired.
func (s *Service) current(ctx context.Context, userID int64) (*Interval, bool, error) {
	iv, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("get active interval: %w", err)
	}
	if iv == nil {
		return nil, false, nil
	}
	if !iv.ExpiredAt(s.clock.Now()) {
		return iv, false, nil
	}

	if err := s.repo.Deactivate(ctx, iv.ID); err != nil {
		return nil, false, fmt.Errorf("deactivate expired interval: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"interval_id": iv.ID,
		"ended_at":    iv.EndsAt,
	}).Info("subscription expired")
	return nil, true, nil
}

func (s *Service) emitActivated(ctx context.Context, iv *Interval) {
	notification.Emit(ctx, s.events, s.log, notification.ForUser(
		notification.TypeSubscriptionActivated, iv.UserID, s.clock.Now(),
		map[string]any{
			"interval_id": iv.ID,
			"role":        iv.Role,
			"is_free":     iv.IsFree,
			"ends_at":     iv.EndsAt,
		},
	))
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
