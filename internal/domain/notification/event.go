package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type names a domain event. It doubles as the broker queue name.
type Type string

const (
	TypeBookingCreated        Type = "booking.created"
	TypeBookingConfirmed      Type = "booking.confirmed"
	TypeBookingCancelled      Type = "booking.cancelled"
	TypeContactRequested      Type = "contact.requested"
	TypeContactApproved       Type = "contact.approved"
	TypeContactRejected       Type = "contact.rejected"
	TypeSubscriptionActivated Type = "subscription.activated"
	TypeSubscriptionExpiring  Type = "subscription.expiring"
	TypeChatMessage           Type = "chat.message"
	TypeListingFlagged        Type = "listing.flagged"
)

// Event is what the chat layer consumes to message users. Events with
// ToAdmins set are meant for every administrator; UserID is then the user
// the event is about, if any.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	UserID     int64          `json:"user_id,omitempty"`
	ToAdmins   bool           `json:"to_admins,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// ForUser builds an event addressed to one user.
func ForUser(t Type, userID int64, at time.Time, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

// ForAdmins builds an event for the administrators.
func ForAdmins(t Type, aboutUserID int64, at time.Time, payload map[string]any) Event {
	e := ForUser(t, aboutUserID, at, payload)
	e.ToAdmins = true
	return e
}
