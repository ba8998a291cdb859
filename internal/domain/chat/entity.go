package chat

import "time"

// Chat is a conversation between two users, optionally about one listing.
// UserAID is always the smaller id so a pair maps to one row.
type Chat struct {
	ID            int64      `gorm:"column:id;primaryKey" json:"id"`
	UserAID       int64      `gorm:"column:user_a_id;not null;index" json:"user_a_id"`
	UserBID       int64      `gorm:"column:user_b_id;not null;index" json:"user_b_id"`
	PropertyID    *int64     `gorm:"column:property_id" json:"property_id,omitempty"`
	LastMessageAt *time.Time `gorm:"column:last_message_at" json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Chat) TableName() string {
	return "chats"
}

func (c *Chat) HasMember(userID int64) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// Peer returns the other member.
func (c *Chat) Peer(userID int64) int64 {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

func normalize(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

type Message struct {
	ID       int64     `gorm:"column:id;primaryKey" json:"id"`
	ChatID   int64     `gorm:"column:chat_id;not null;index" json:"chat_id"`
	SenderID int64     `gorm:"column:sender_id;not null" json:"sender_id"`
	Body     string    `gorm:"column:body;type:text;not null" json:"body"`
	IsRead   bool      `gorm:"column:is_read;not null" json:"is_read"`
	SentAt   time.Time `gorm:"column:sent_at;not null;index" json:"sent_at"`
}

func (Message) TableName() string {
	return "chat_messages"
}

// Summary is a chat as listed for one of its members.
type Summary struct {
	Chat
	PeerID      int64 `json:"peer_id"`
	UnreadCount int64 `json:"unread_count"`
}

type CreateChatRequest struct {
	PeerID     int64  `json:"peer_id" binding:"required,gt=0"`
	PropertyID *int64 `json:"property_id" binding:"omitempty,gt=0"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}
