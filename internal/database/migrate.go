package database

import (
	"fmt"

	"gorm.io/gorm"
)

type partialIndex struct {
	table string
	ddl   string
}

// Constraints that gorm tags cannot express. Both PostgreSQL and SQLite
// accept partial and expression indexes in this form.
var partialIndexes = []partialIndex{
	{
		table: "subscription_intervals",
		ddl:   `CREATE UNIQUE INDEX IF NOT EXISTS uq_subscription_one_active ON subscription_intervals (user_id) WHERE is_active`,
	},
	{
		table: "contact_requests",
		ddl:   `CREATE UNIQUE INDEX IF NOT EXISTS uq_contact_one_pending ON contact_requests (requester_id, target_id, COALESCE(property_id, 0)) WHERE status = 'pending'`,
	},
	{
		table: "chats",
		ddl:   `CREATE UNIQUE INDEX IF NOT EXISTS uq_chat_pair ON chats (user_a_id, user_b_id, COALESCE(property_id, 0))`,
	},
}

// Migrate runs AutoMigrate for the given models and then creates the partial
// unique indexes for whichever of their tables exist.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	for _, idx := range partialIndexes {
		if !db.Migrator().HasTable(idx.table) {
			continue
		}
		if err := db.Exec(idx.ddl).Error; err != nil {
			return fmt.Errorf("create index on %s: %w", idx.table, err)
		}
	}
	return nil
}
