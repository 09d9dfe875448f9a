package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName returns the dialect name, defaulting to sqlite.
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// greatestFunc returns the SQL function that picks the larger of two values.
// sqlite spells it MAX, postgres GREATEST.
func greatestFunc(db *gorm.DB) string {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return "GREATEST"
	default:
		return "MAX"
	}
}
