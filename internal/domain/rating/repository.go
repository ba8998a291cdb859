package rating

import (
	"context"

	"gorm.io/gorm"

	"estatebot/internal/domain/user"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(r Repository) error) error

	GetUser(ctx context.Context, id int64) (*user.User, error)
	LockUser(ctx context.Context, id int64) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error

	Exists(ctx context.Context, authorID, targetID int64) (bool, error)
	SumAndCount(ctx context.Context, targetID int64) (sum int64, count int64, err error)
	Create(ctx context.Context, rt *Rating) error
	Distribution(ctx context.Context, targetID int64) (map[int]int, error)
	ListByTarget(ctx context.Context, targetID int64, limit, offset int) ([]Rating, error)
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

func (r *repository) GetUser(ctx context.Context, id int64) (*user.User, error) {
	return r.users.GetByID(ctx, id)
}

func (r *repository) LockUser(ctx context.Context, id int64) (*user.User, error) {
	return r.users.GetByIDForUpdate(ctx, id)
}

func (r *repository) UpdateUser(ctx context.Context, u *user.User) error {
	return r.users.Update(ctx, u)
}

func (r *repository) Exists(ctx context.Context, authorID, targetID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Rating{}).
		Where("author_id = ? AND target_id = ?", authorID, targetID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) SumAndCount(ctx context.Context, targetID int64) (int64, int64, error) {
	var row struct {
		Total int64
		Cnt   int64
	}
	err := r.db.WithContext(ctx).
		Model(&Rating{}).
		Select("CAST(COALESCE(SUM(score), 0) AS BIGINT) AS total, COUNT(*) AS cnt").
		Where("target_id = ?", targetID).
		Scan(&row).Error
	return row.Total, row.Cnt, err
}

func (r *repository) Create(ctx context.Context, rt *Rating) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *repository) Distribution(ctx context.Context, targetID int64) (map[int]int, error) {
	var rows []struct {
		Score int
		Cnt   int
	}
	err := r.db.WithContext(ctx).
		Model(&Rating{}).
		Select("score, COUNT(*) AS cnt").
		Where("target_id = ?", targetID).
		Group("score").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dist := make(map[int]int, MaxScore)
	for s := MinScore; s <= MaxScore; s++ {
		dist[s] = 0
	}
	for _, row := range rows {
		dist[row.Score] = row.Cnt
	}
	return dist, nil
}

func (r *repository) ListByTarget(ctx context.Context, targetID int64, limit, offset int) ([]Rating, error) {
	var list []Rating
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}
