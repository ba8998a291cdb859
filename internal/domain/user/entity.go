package user

import "time"

// Role is the marketplace role a user picks in the bot.
type Role string

const (
	RoleNone      Role = ""
	RoleBuyer     Role = "buyer"
	RoleSeller    Role = "seller"
	RoleRenter    Role = "renter"
	RoleRealtor   Role = "realtor"
	RoleAgency    Role = "agency"
	RoleDeveloper Role = "developer"
)

// Roles lists every selectable role.
var Roles = []Role{RoleBuyer, RoleSeller, RoleRenter, RoleRealtor, RoleAgency, RoleDeveloper}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is keyed by the chat platform user id.
type User struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Username       string    `gorm:"column:username;size:64" json:"username,omitempty"`
	FullName       string    `gorm:"column:full_name;size:200" json:"full_name,omitempty"`
	Phone          string    `gorm:"column:phone;size:32" json:"-"`
	Role           Role      `gorm:"column:role;size:20;index" json:"role"`
	RoleLocked     bool      `gorm:"column:role_locked;not null" json:"role_locked"`
	FreePeriodUsed bool      `gorm:"column:free_period_used;not null" json:"free_period_used"`
	Rating         float64   `gorm:"column:rating;not null" json:"rating"`
	RatingCount    int       `gorm:"column:rating_count;not null" json:"rating_count"`
	LastActiveAt   time.Time `gorm:"column:last_active_at" json:"last_active_at"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Contact is the private part of a profile, revealed only through mediation.
type Contact struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (u *User) Contact() *Contact {
	return &Contact{UserID: u.ID, Username: u.Username, Phone: u.Phone}
}
