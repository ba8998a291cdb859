package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"estatebot/internal/domain/user"
)

// Repository handles persistence for subscription intervals. User reads and
// writes go through it too so one transaction covers both tables.
type Repository interface {
	Transaction(ctx context.Context, fn func(r Repository) error) error

	GetUser(ctx context.Context, userID int64) (*user.User, error)
	LockUser(ctx context.Context, userID int64) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error

	GetActive(ctx context.Context, userID int64) (*Interval, error)
	Create(ctx context.Context, iv *Interval) error
	Deactivate(ctx context.Context, id int64) error
	DeactivateAllForUser(ctx context.Context, userID int64) (int64, error)
	CountActive(ctx context.Context, userID int64) (int64, error)
	ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]Interval, error)
	ListByUser(ctx context.Context, userID int64) ([]Interval, error)
}

type repository struct {
	db    *gorm.DB
	users user.Repository
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db, users: user.NewRepository(db)}
}

func (r *repository) Transaction(ctx context.Context, fn func(r Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *repository) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	return r.users.GetByID(ctx, userID)
}

func (r *repository) LockUser(ctx context.Context, userID int64) (*user.User, error) {
	return r.users.GetByIDForUpdate(ctx, userID)
}

func (r *repository) UpdateUser(ctx context.Context, u *user.User) error {
	return r.users.Update(ctx, u)
}

// GetActive returns nil, nil when the user has no active interval.
func (r *repository) GetActive(ctx context.Context, userID int64) (*Interval, error) {
	var iv Interval
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("ends_at DESC").
		First(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *repository) Create(ctx context.Context, iv *Interval) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

// Deactivate is idempotent.
func (r *repository) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&Interval{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false).Error
}

func (r *repository) DeactivateAllForUser(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Interval{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *repository) CountActive(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Interval{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&n).Error
	return n, err
}

// ListActiveEndingBetween returns active intervals with from <= ends_at < to.
func (r *repository) ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]Interval, error) {
	var list []Interval
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND ends_at >= ? AND ends_at < ?", true, from, to).
		Order("ends_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Interval, error) {
	var list []Interval
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("starts_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
