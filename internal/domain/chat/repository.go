package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindChat(ctx context.Context, userA, userB int64, propertyID *int64) (*Chat, error)
	CreateChat(ctx context.Context, c *Chat) error
	GetChat(ctx context.Context, id int64) (*Chat, error)
	ListChatsForUser(ctx context.Context, userID int64) ([]Chat, error)

	CreateMessage(ctx context.Context, m *Message) error
	TouchChat(ctx context.Context, chatID int64, at time.Time) error
	ListMessages(ctx context.Context, chatID int64, limit int, beforeID int64) ([]Message, error)
	CountUnread(ctx context.Context, chatID, readerID int64) (int64, error)
	MarkRead(ctx context.Context, chatID, readerID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindChat expects userA < userB.
func (r *repository) FindChat(ctx context.Context, userA, userB int64, propertyID *int64) (*Chat, error) {
	var pid int64
	if propertyID != nil {
		pid = *propertyID
	}

	var c Chat
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ? AND COALESCE(property_id, 0) = ?", userA, userB, pid).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) CreateChat(ctx context.Context, c *Chat) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetChat(ctx context.Context, id int64) (*Chat, error) {
	var c Chat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChatsForUser orders by latest activity.
func (r *repository) ListChatsForUser(ctx context.Context, userID int64) ([]Chat, error) {
	var list []Chat
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) CreateMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) TouchChat(ctx context.Context, chatID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Chat{}).
		Where("id = ?", chatID).
		Update("last_message_at", at).Error
}

// ListMessages returns up to limit messages older than beforeID (all when
// beforeID is 0), newest first.
func (r *repository) ListMessages(ctx context.Context, chatID int64, limit int, beforeID int64) ([]Message, error) {
	q := r.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}

	var list []Message
	err := q.Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *repository) CountUnread(ctx context.Context, chatID, readerID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Count(&n).Error
	return n, err
}

func (r *repository) MarkRead(ctx context.Context, chatID, readerID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
