package notification

import (
	"encoding/json"
	"time"
)

// Notification is one event copied into a recipient's inbox, so the chat
// layer can page through what it may have missed from the broker.
type Notification struct {
	ID        int64      `gorm:"column:id;primaryKey" json:"id"`
	UserID    int64      `gorm:"column:user_id;not null;index:idx_notifications_user_read" json:"user_id"`
	EventID   string     `gorm:"column:event_id;size:36;not null" json:"event_id"`
	Type      Type       `gorm:"column:type;size:40;not null" json:"type"`
	Data      string     `gorm:"column:data;type:text" json:"-"`
	IsRead    bool       `gorm:"column:is_read;not null;index:idx_notifications_user_read" json:"is_read"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Payload decodes Data; broken JSON yields nil.
func (n *Notification) Payload() map[string]any {
	if n.Data == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(n.Data), &out); err != nil {
		return nil
	}
	return out
}

type Response struct {
	ID        int64          `json:"id"`
	EventID   string         `json:"event_id"`
	Type      Type           `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func ResponseFromEntity(n *Notification) Response {
	return Response{
		ID:        n.ID,
		EventID:   n.EventID,
		Type:      n.Type,
		Payload:   n.Payload(),
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

type ListResponse struct {
	Notifications []Response `json:"notifications"`
	UnreadCount   int64      `json:"unread_count"`
}
