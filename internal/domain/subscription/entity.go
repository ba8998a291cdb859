package subscription

import (
	"time"

	"estatebot/internal/domain/reason"
	"estatebot/internal/domain/user"
)

const day = 24 * time.Hour

// Interval is one free or paid subscription period. At most one interval
// per user is active.
type Interval struct {
	ID         int64     `gorm:"column:id;primaryKey" json:"id"`
	UserID     int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Role       user.Role `gorm:"column:role;size:20;not null" json:"role"`
	StartsAt   time.Time `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt     time.Time `gorm:"column:ends_at;not null;index" json:"ends_at"`
	IsFree     bool      `gorm:"column:is_free;not null" json:"is_free"`
	IsActive   bool      `gorm:"column:is_active;not null;index" json:"is_active"`
	ApprovedBy *int64    `gorm:"column:approved_by" json:"approved_by,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Interval) TableName() string {
	return "subscription_intervals"
}

// ExpiredAt reports whether the interval no longer covers now.
func (i *Interval) ExpiredAt(now time.Time) bool {
	return !i.EndsAt.After(now)
}

// DaysLeft counts whole days until the end, never negative.
func (i *Interval) DaysLeft(now time.Time) int {
	if i.ExpiredAt(now) {
		return 0
	}
	return int(i.EndsAt.Sub(now) / day)
}

// Decision answers a yes/no eligibility question.
type Decision struct {
	Allowed bool        `json:"allowed"`
	Reason  reason.Code `json:"reason,omitempty"`
}

func allow() Decision { return Decision{Allowed: true} }

func deny(code reason.Code) Decision { return Decision{Reason: code} }

// Info describes a user's subscription state for display.
type Info struct {
	Role     user.Role `json:"role"`
	Required bool      `json:"required"`
	Active   bool      `json:"active"`
	Interval *Interval `json:"interval,omitempty"`
	DaysLeft int       `json:"days_left"`
}

// RoleSelection is the outcome of picking a role. FreePeriodReason explains
// why no free period was granted; it does not undo the role change.
type RoleSelection struct {
	User             *user.User  `json:"user"`
	FreePeriod       *Interval   `json:"free_period,omitempty"`
	FreePeriodReason reason.Code `json:"free_period_reason,omitempty"`
}

type ActivateRequest struct {
	UserID     int64     `json:"user_id" binding:"required,gt=0"`
	Role       user.Role `json:"role" binding:"required"`
	Months     int       `json:"months" binding:"required,gt=0,lte=120"`
	ApprovedBy int64     `json:"-"`
}
