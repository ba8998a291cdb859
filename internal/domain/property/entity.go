package property

import "time"

type Type string

const (
	TypeApartment  Type = "apartment"
	TypeHouse      Type = "house"
	TypeCommercial Type = "commercial"
	TypeLand       Type = "land"
)

func (t Type) Valid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeCommercial, TypeLand:
		return true
	}
	return false
}

type Status string

const (
	StatusActive     Status = "active"
	StatusSuspicious Status = "suspicious"
	StatusArchived   Status = "archived"
)

// Property is a listing. Price is the nightly rate for daily rentals and the
// asking price otherwise.
type Property struct {
	ID              int64      `gorm:"column:id;primaryKey" json:"id"`
	OwnerID         int64      `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Type            Type       `gorm:"column:property_type;size:20;not null;index" json:"property_type"`
	District        string     `gorm:"column:district;size:100;index" json:"district"`
	Address         string     `gorm:"column:address;size:300" json:"address"`
	Price           float64    `gorm:"column:price;not null" json:"price"`
	Currency        string     `gorm:"column:currency;size:3;not null" json:"currency"`
	Rooms           int        `gorm:"column:rooms" json:"rooms"`
	Area            float64    `gorm:"column:area" json:"area"`
	Floor           *int       `gorm:"column:floor" json:"floor,omitempty"`
	TotalFloors     *int       `gorm:"column:total_floors" json:"total_floors,omitempty"`
	Description     string     `gorm:"column:description;type:text" json:"description"`
	IsDailyRent     bool       `gorm:"column:is_daily_rent;not null" json:"is_daily_rent"`
	AvailableFrom   *time.Time `gorm:"column:available_from" json:"available_from,omitempty"`
	AvailableTo     *time.Time `gorm:"column:available_to" json:"available_to,omitempty"`
	Status          Status     `gorm:"column:status;size:20;not null;index" json:"status"`
	ModerationScore int        `gorm:"column:moderation_score" json:"-"`
	CreatedAt       time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// Favorite links a user to a saved listing.
type Favorite struct {
	ID         int64     `gorm:"column:id;primaryKey" json:"id"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:idx_favorite_user_property" json:"user_id"`
	PropertyID int64     `gorm:"column:property_id;not null;uniqueIndex:idx_favorite_user_property;index" json:"property_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

type CreateRequest struct {
	Type          Type       `json:"property_type" binding:"required"`
	District      string     `json:"district" binding:"required,max=100"`
	Address       string     `json:"address" binding:"omitempty,max=300"`
	Price         float64    `json:"price" binding:"required,gt=0"`
	Currency      string     `json:"currency" binding:"omitempty,oneof=UZS USD"`
	Rooms         int        `json:"rooms" binding:"gte=0,lte=100"`
	Area          float64    `json:"area" binding:"gte=0"`
	Floor         *int       `json:"floor"`
	TotalFloors   *int       `json:"total_floors"`
	Description   string     `json:"description" binding:"max=4000"`
	IsDailyRent   bool       `json:"is_daily_rent"`
	AvailableFrom *time.Time `json:"available_from"`
	AvailableTo   *time.Time `json:"available_to"`
}

type Filter struct {
	Type      Type
	District  string
	MinPrice  float64
	MaxPrice  float64
	Rooms     int
	DailyOnly bool
	Limit     int
	Offset    int
}
