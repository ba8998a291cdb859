package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/policy"
	"estatebot/internal/domain/property"
	"estatebot/internal/domain/reason"
	"estatebot/internal/pkg/clock"
)

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

// IsAvailable is true when the range is non-empty and no confirmed booking
// of the property overlaps it.
func (s *Service) IsAvailable(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) (bool, error) {
	checkIn, checkOut = checkIn.UTC(), checkOut.UTC()
	if !checkIn.Before(checkOut) {
		return false, nil
	}
	busy, err := s.repo.HasConfirmedOverlap(ctx, propertyID, checkIn, checkOut, 0)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return !busy, nil
}

// CreateBooking stores a pending booking. The overlap check and the insert
// share one transaction that holds the property row.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req CreateRequest) (*Booking, reason.Code, error) {
	checkIn, checkOut := req.CheckIn.UTC(), req.CheckOut.UTC()
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return nil, reason.InvalidDateRange, nil
	}
	guests := req.Guests
	if guests <= 0 {
		guests = 1
	}

	var created *Booking
	err := s.repo.Transaction(ctx, func(r Repository) error {
		p, err := r.LockProperty(ctx, req.PropertyID)
		if err != nil {
			return err
		}
		if p == nil {
			return reason.Deny(reason.PropertyNotFound)
		}

		ok, err := r.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return reason.Deny(reason.UserNotFound)
		}

		if p.Status != property.StatusActive {
			return reason.Deny(reason.PropertyUnavailable)
		}
		busy, err := r.HasConfirmedOverlap(ctx, p.ID, checkIn, checkOut, 0)
		if err != nil {
			return err
		}
		if busy {
			return reason.Deny(reason.PropertyUnavailable)
		}

		b := &Booking{
			PropertyID: p.ID,
			UserID:     userID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Guests:     guests,
			TotalPrice: p.Price * float64(nights),
			Status:     StatusPending,
			CreatedAt:  s.clock.Now(),
		}
		if err := r.Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if code, err := reason.Split(err); code != reason.OK || err != nil {
		return nil, code, wrap("create booking", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  created.ID,
		"property_id": created.PropertyID,
		"user_id":     userID,
		"nights":      nights,
	}).Info("booking created")
	notification.Emit(ctx, s.events, s.log, notification.ForAdmins(
		notification.TypeBookingCreated, userID, s.clock.Now(), payload(created),
	))
	return created, reason.OK, nil
}

// ConfirmBooking moves a pending booking to confirmed. The overlap check is
// repeated so two overlapping pending bookings cannot both be confirmed.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID, adminID int64) (*Booking, reason.Code, error) {
	if !s.policy.IsAdmin(adminID) {
		return nil, reason.Forbidden, nil
	}

	var confirmed *Booking
	err := s.repo.Transaction(ctx, func(r Repository) error {
		b, err := r.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return reason.Deny(reason.NotFound)
		}

		// property row first, then the booking, same order as CreateBooking
		if _, err := r.LockProperty(ctx, b.PropertyID); err != nil {
			return err
		}
		b, err = r.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return reason.Deny(reason.NotFound)
		}
		if b.Status != StatusPending {
			return reason.Deny(reason.InvalidStatusTransition)
		}

		busy, err := r.HasConfirmedOverlap(ctx, b.PropertyID, b.CheckIn, b.CheckOut, b.ID)
		if err != nil {
			return err
		}
		if busy {
			return reason.Deny(reason.PropertyUnavailable)
		}

		now := s.clock.Now()
		b.Status = StatusConfirmed
		b.ConfirmedBy = &adminID
		b.ConfirmedAt = &now
		if err := r.Update(ctx, b); err != nil {
			return err
		}
		confirmed = b
		return nil
	})
	if code, err := reason.Split(err); code != reason.OK || err != nil {
		return nil, code, wrap("confirm booking", err)
	}

	notification.Emit(ctx, s.events, s.log, notification.ForUser(
		notification.TypeBookingConfirmed, confirmed.UserID, s.clock.Now(), payload(confirmed),
	))
	return confirmed, reason.OK, nil
}

// CancelBooking withdraws a pending booking. The guest or an admin may
// cancel; confirmed and cancelled bookings are final.
func (s *Service) CancelBooking(ctx context.Context, bookingID, actorID int64) (*Booking, reason.Code, error) {
	isAdmin := s.policy.IsAdmin(actorID)

	var cancelled *Booking
	err := s.repo.Transaction(ctx, func(r Repository) error {
		b, err := r.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return reason.Deny(reason.NotFound)
		}
		if b.UserID != actorID && !isAdmin {
			return reason.Deny(reason.Forbidden)
		}
		if b.Status != StatusPending {
			return reason.Deny(reason.InvalidStatusTransition)
		}

		now := s.clock.Now()
		b.Status = StatusCancelled
		b.CancelledAt = &now
		if err := r.Update(ctx, b); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if code, err := reason.Split(err); code != reason.OK || err != nil {
		return nil, code, wrap("cancel booking", err)
	}

	e := notification.ForAdmins(notification.TypeBookingCancelled, cancelled.UserID, s.clock.Now(), payload(cancelled))
	if actorID != cancelled.UserID {
		e = notification.ForUser(notification.TypeBookingCancelled, cancelled.UserID, s.clock.Now(), payload(cancelled))
	}
	notification.Emit(ctx, s.events, s.log, e)
	return cancelled, reason.OK, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListForProperty(ctx context.Context, propertyID int64) ([]Booking, error) {
	return s.repo.ListByProperty(ctx, propertyID)
}

func payload(b *Booking) map[string]any {
	return map[string]any{
		"booking_id":  b.ID,
		"property_id": b.PropertyID,
		"check_in":    b.CheckIn,
		"check_out":   b.CheckOut,
		"guests":      b.Guests,
		"total_price": b.TotalPrice,
		"status":      b.Status,
	}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
