package rating

import "time"

const (
	MinScore = 1
	MaxScore = 5
)

// Rating is immutable; one per (author, target).
type Rating struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	AuthorID  int64     `gorm:"column:author_id;not null;uniqueIndex:idx_rating_author_target" json:"author_id"`
	TargetID  int64     `gorm:"column:target_id;not null;uniqueIndex:idx_rating_author_target;index" json:"target_id"`
	Score     int       `gorm:"column:score;not null" json:"score"`
	Comment   string    `gorm:"column:comment;type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

type Stats struct {
	UserID  int64   `json:"user_id"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	// Distribution maps each score 1..5 to the number of ratings with it.
	Distribution map[int]int `json:"distribution"`
}

type CreateRequest struct {
	TargetID int64  `json:"target_id" binding:"required,gt=0"`
	Score    int    `json:"score" binding:"required"`
	Comment  string `json:"comment" binding:"max=1000"`
}
