package contact

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	FindPending(ctx context.Context, requesterID, targetID int64, propertyID *int64) (*Request, error)
	HasApproved(ctx context.Context, requesterID, targetID int64) (bool, error)
	Resolve(ctx context.Context, id int64, status Status, adminID int64, at time.Time) (bool, error)
	ListPending(ctx context.Context, limit int) ([]Request, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]Request, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPending matches a missing property only against requests without one.
func (r *repository) FindPending(ctx context.Context, requesterID, targetID int64, propertyID *int64) (*Request, error) {
	var pid int64
	if propertyID != nil {
		pid = *propertyID
	}

	var req Request
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ? AND COALESCE(property_id, 0) = ?", requesterID, targetID, pid).
		Where("status = ?", StatusPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) HasApproved(ctx context.Context, requesterID, targetID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Request{}).
		Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, StatusApproved).
		Count(&n).Error
	return n > 0, err
}

// Resolve moves a pending request to its final status. It reports false when
// the request was no longer pending.
func (r *repository) Resolve(ctx context.Context, id int64, status Status, adminID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Request{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":       status,
			"processed_by": adminID,
			"processed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ListPending(ctx context.Context, limit int) ([]Request, error) {
	var list []Request
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *repository) ListByRequester(ctx context.Context, requesterID int64) ([]Request, error) {
	var list []Request
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
