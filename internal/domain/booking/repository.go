package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"estatebot/internal/database"
	"estatebot/internal/domain/property"
	"estatebot/internal/domain/user"
)

// Repository persists bookings. Property and user lookups go through it so a
// transaction covers the overlap check and the write.
type Repository interface {
	Transaction(ctx context.Context, fn func(r Repository) error) error

	LockProperty(ctx context.Context, propertyID int64) (*property.Property, error)
	UserExists(ctx context.Context, userID int64) (bool, error)

	HasConfirmedOverlap(ctx context.Context, propertyID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	ListByUser(ctx context.Context, userID int64) ([]Booking, error)
	ListByProperty(ctx context.Context, propertyID int64) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(r Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *repository) LockProperty(ctx context.Context, propertyID int64) (*property.Property, error) {
	return property.NewRepository(r.db).GetByIDForUpdate(ctx, propertyID)
}

func (r *repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	u, err := user.NewRepository(r.db).GetByID(ctx, userID)
	return u != nil, err
}

// HasConfirmedOverlap reports whether a confirmed booking other than
// excludeID intersects [checkIn, checkOut).
func (r *repository) HasConfirmedOverlap(ctx context.Context, propertyID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	var cnt int64
	q := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("property_id = ?", propertyID).
		Where("status = ?", StatusConfirmed).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// GetByID returns nil, nil for unknown ids.
func (r *repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return first(r.db.WithContext(ctx), id)
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id int64) (*Booking, error) {
	return first(database.ForUpdate(r.db.WithContext(ctx)), id)
}

func first(q *gorm.DB, id int64) (*Booking, error) {
	var b Booking
	err := q.Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Update(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) ListByProperty(ctx context.Context, propertyID int64) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in ASC, id ASC").
		Find(&list).Error
	return list, err
}
