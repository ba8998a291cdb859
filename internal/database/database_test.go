package database

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type activeRow struct {
	ID       int64 `gorm:"primaryKey"`
	UserID   int64 `gorm:"not null"`
	IsActive bool  `gorm:"not null"`
	EndsAt   time.Time
}

func (activeRow) TableName() string { return "subscription_intervals" }

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost:5432/db"))
	assert.True(t, IsPostgres("postgresql://localhost/db"))
	assert.False(t, IsPostgres("file:estatebot.db"))
	assert.False(t, IsPostgres(":memory:"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestMigrate_PartialUniqueIndexAllowsOneActiveRow(t *testing.T) {
	db, err := Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &activeRow{}))

	now := time.Now().UTC()
	require.NoError(t, db.Create(&activeRow{UserID: 1, IsActive: true, EndsAt: now}).Error)
	require.NoError(t, db.Create(&activeRow{UserID: 1, IsActive: false, EndsAt: now}).Error)
	require.NoError(t, db.Create(&activeRow{UserID: 1, IsActive: false, EndsAt: now}).Error)

	err = db.Create(&activeRow{UserID: 1, IsActive: true, EndsAt: now}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	require.NoError(t, db.Create(&activeRow{UserID: 2, IsActive: true, EndsAt: now}).Error)
}

func TestForUpdate_NoopOnSQLite(t *testing.T) {
	db, err := Connect(":memory:", nil)
	require.NoError(t, err)

	assert.Same(t, db, ForUpdate(db))
}
