package contact

import (
	"time"

	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request asks an administrator to reveal a restricted user's contact.
// At most one pending request exists per (requester, target, property).
type Request struct {
	ID          int64      `gorm:"column:id;primaryKey" json:"id"`
	RequesterID int64      `gorm:"column:requester_id;not null;index" json:"requester_id"`
	TargetID    int64      `gorm:"column:target_id;not null;index" json:"target_id"`
	PropertyID  *int64     `gorm:"column:property_id" json:"property_id,omitempty"`
	Status      Status     `gorm:"column:status;size:20;not null;index" json:"status"`
	ProcessedBy *int64     `gorm:"column:processed_by" json:"processed_by,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
}

func (Request) TableName() string {
	return "contact_requests"
}

// Visibility answers whether the requester may see the owner's contact.
type Visibility struct {
	Show    bool          `json:"show"`
	Reason  reason.Code   `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
	Contact *user.Contact `json:"contact,omitempty"`
}

// Approval is returned to the approving admin so the chat layer can forward
// the contact to the requester.
type Approval struct {
	Request *Request      `json:"request"`
	Contact *user.Contact `json:"contact"`
}

type CreateRequest struct {
	TargetID   int64  `json:"target_id" binding:"required,gt=0"`
	PropertyID *int64 `json:"property_id" binding:"omitempty,gt=0"`
}
