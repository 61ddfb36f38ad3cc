package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withRowLock adds SELECT ... FOR UPDATE. SQLite has no row locks, it already
// serializes writers on the database file.
func withRowLock(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}

	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
