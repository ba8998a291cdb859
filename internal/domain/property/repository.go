package property

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"estatebot/internal/database"
)

type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id int64) (*Property, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*Property, error)
	Search(ctx context.Context, f Filter) ([]Property, int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Property, error)
	CountCreatedSince(ctx context.Context, ownerID int64, since time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error

	AddFavorite(ctx context.Context, fav *Favorite) error
	RemoveFavorite(ctx context.Context, userID, propertyID int64) (bool, error)
	ListFavorites(ctx context.Context, userID int64) ([]Property, error)
	IsFavorite(ctx context.Context, userID, propertyID int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID returns nil, nil for unknown ids.
func (r *repository) GetByID(ctx context.Context, id int64) (*Property, error) {
	return first(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate locks the row on PostgreSQL. Booking uses it to serialize
// writers per property.
func (r *repository) GetByIDForUpdate(ctx context.Context, id int64) (*Property, error) {
	return first(database.ForUpdate(r.db.WithContext(ctx)), id)
}

func first(q *gorm.DB, id int64) (*Property, error) {
	var p Property
	err := q.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Search returns active listings, newest first.
func (r *repository) Search(ctx context.Context, f Filter) ([]Property, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&Property{}).
		Where("status = ?", StatusActive)

	if f.Type != "" {
		q = q.Where("property_type = ?", f.Type)
	}
	if f.District != "" {
		q = q.Where("LOWER(district) = LOWER(?)", f.District)
	}
	if f.MinPrice > 0 {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.Rooms > 0 {
		q = q.Where("rooms = ?", f.Rooms)
	}
	if f.DailyOnly {
		q = q.Where("is_daily_rent = ?", true)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Property
	err := q.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error
	return list, total, err
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64) ([]Property, error) {
	var list []Property
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) CountCreatedSince(ctx context.Context, ownerID int64, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Property{}).
		Where("owner_id = ? AND created_at >= ?", ownerID, since).
		Count(&n).Error
	return n, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Property{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) AddFavorite(ctx context.Context, fav *Favorite) error {
	return r.db.WithContext(ctx).Create(fav).Error
}

func (r *repository) RemoveFavorite(ctx context.Context, userID, propertyID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&Favorite{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ListFavorites(ctx context.Context, userID int64) ([]Property, error) {
	var list []Property
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&Favorite{}).Select("property_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) IsFavorite(ctx context.Context, userID, propertyID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&n).Error
	return n > 0, err
}
