package relationship

import "time"

// Block stops the blocked user from opening or writing to chats with the
// blocker. It works in both directions once either side has blocked.
type Block struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"-"`
	BlockerID int64     `gorm:"column:blocker_id;not null;uniqueIndex:idx_block_pair" json:"-"`
	BlockedID int64     `gorm:"column:blocked_id;not null;uniqueIndex:idx_block_pair;index" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"blocked_at"`
}

func (Block) TableName() string { return "user_blocks" }

type blockRequest struct {
	UserID int64 `json:"user_id" binding:"required,gt=0"`
}
