package relationship

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, b *Block) error
	Delete(ctx context.Context, blockerID, blockedID int64) (bool, error)
	// Between reports a block in either direction.
	Between(ctx context.Context, userA, userB int64) (bool, error)
	ListByBlocker(ctx context.Context, blockerID int64) ([]Block, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Block) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) Delete(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&Block{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Between(ctx context.Context, userA, userB int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByBlocker(ctx context.Context, blockerID int64) ([]Block, error) {
	var list []Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
