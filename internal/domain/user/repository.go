package user

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"estatebot/internal/database"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Touch(ctx context.Context, id int64, at time.Time) error
	ListByIDs(ctx context.Context, ids []int64) ([]User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetByID returns nil, nil when the user does not exist.
func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id int64) (*User, error) {
	return r.first(database.ForUpdate(r.db.WithContext(ctx)), id)
}

func (r *repository) first(q *gorm.DB, id int64) (*User, error) {
	var u User
	err := q.Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *repository) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("last_active_at", at).Error
}

func (r *repository) ListByIDs(ctx context.Context, ids []int64) ([]User, error) {
	var users []User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&users).Error
	return users, err
}
