package booking

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

const night = 24 * time.Hour

// Booking reserves [CheckIn, CheckOut) of a property. Only confirmed
// bookings block other guests.
type Booking struct {
	ID          int64      `gorm:"column:id;primaryKey" json:"id"`
	PropertyID  int64      `gorm:"column:property_id;not null;index:idx_booking_property_range" json:"property_id"`
	UserID      int64      `gorm:"column:user_id;not null;index" json:"user_id"`
	CheckIn     time.Time  `gorm:"column:check_in;not null;index:idx_booking_property_range" json:"check_in"`
	CheckOut    time.Time  `gorm:"column:check_out;not null;index:idx_booking_property_range" json:"check_out"`
	Guests      int        `gorm:"column:guests;not null;default:1" json:"guests"`
	TotalPrice  float64    `gorm:"column:total_price;not null" json:"total_price"`
	Status      Status     `gorm:"column:status;size:20;not null;index" json:"status"`
	ConfirmedBy *int64     `gorm:"column:confirmed_by" json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Nights counts whole 24h days. Partial days do not count.
func Nights(checkIn, checkOut time.Time) int {
	if !checkIn.Before(checkOut) {
		return 0
	}
	return int(checkOut.Sub(checkIn) / night)
}

// Overlaps is the half-open test: touching ranges do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

type CreateRequest struct {
	PropertyID int64     `json:"property_id" binding:"required,gt=0"`
	CheckIn    time.Time `json:"check_in" binding:"required"`
	CheckOut   time.Time `json:"check_out" binding:"required"`
	Guests     int       `json:"guests" binding:"gte=0,lte=50"`
}

// Availability is the answer to an availability query.
type Availability struct {
	PropertyID int64     `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Available  bool      `json:"available"`
}
